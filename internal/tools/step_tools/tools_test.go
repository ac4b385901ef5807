package step_tools

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/fizzy-mcp/internal/fizzy"
	"github.com/teemow/fizzy-mcp/internal/server"
	"github.com/teemow/fizzy-mcp/internal/tools/common"
	"github.com/teemow/fizzy-mcp/internal/tools/toolstest"
)

func TestRegisterStepTools(t *testing.T) {
	api := toolstest.NewAPI(t)

	s := toolstest.NewMCPServer()
	require.NoError(t, RegisterStepTools(s, toolstest.NewServerContext(t, api, server.WithReadOnly(true))))
	assert.Equal(t, []string{"fizzy_list_steps"}, toolstest.ToolNames(t, s))

	s = toolstest.NewMCPServer()
	require.NoError(t, RegisterStepTools(s, toolstest.NewServerContext(t, api)))
	assert.Equal(t, []string{
		"fizzy_create_step",
		"fizzy_delete_step",
		"fizzy_list_steps",
		"fizzy_update_step",
	}, toolstest.ToolNames(t, s))
}

func TestListSteps(t *testing.T) {
	api := toolstest.NewAPI(t)
	api.JSON(http.MethodGet, "/897362094/cards/8", http.StatusOK, fizzy.Card{
		ID:     "c8",
		Number: 8,
		Steps:  []fizzy.Step{{ID: "s1", Content: "Draft"}, {ID: "s2", Content: "Review", Completed: true}},
	})
	api.JSON(http.MethodGet, "/897362094/cards/9", http.StatusOK, fizzy.Card{ID: "c9", Number: 9})
	sc := toolstest.NewServerContext(t, api)
	handler := common.AccountHandler(sc, listSteps(sc))

	var steps []fizzy.Step
	toolstest.Decode(t, toolstest.Call(t, handler, map[string]interface{}{"card_number": float64(8)}), &steps)
	require.Len(t, steps, 2)
	assert.True(t, steps[1].Completed)

	// a card without steps lists an empty array, not null
	result := toolstest.Call(t, handler, map[string]interface{}{"card_number": float64(9)})
	assert.Equal(t, "[]", toolstest.Text(result))
}

func TestCreateAndUpdateStep(t *testing.T) {
	api := toolstest.NewAPI(t)
	api.JSON(http.MethodPost, "/897362094/cards/8/steps", http.StatusCreated, fizzy.Step{ID: "s3", Content: "Ship"})
	api.JSON(http.MethodPut, "/897362094/cards/8/steps/s3", http.StatusNoContent, nil)
	sc := toolstest.NewServerContext(t, api)

	var step fizzy.Step
	toolstest.Decode(t, toolstest.Call(t, common.AccountHandler(sc, createStep(sc)), map[string]interface{}{
		"card_number": float64(8),
		"content":     "Ship",
	}), &step)
	assert.Equal(t, "s3", step.ID)

	var updated map[string]any
	toolstest.Decode(t, toolstest.Call(t, common.AccountHandler(sc, updateStep(sc)), map[string]interface{}{
		"card_number": float64(8),
		"step_id":     "s3",
		"completed":   true,
	}), &updated)
	assert.Equal(t, true, updated["success"])

	requests := api.Requests()
	last := requests[len(requests)-1]
	assert.Equal(t, map[string]any{"step": map[string]any{"completed": true}}, last.Body)
}

func TestUpdateStep_RequiresAChange(t *testing.T) {
	api := toolstest.NewAPI(t)
	sc := toolstest.NewServerContext(t, api)

	result := toolstest.Call(t, common.AccountHandler(sc, updateStep(sc)), map[string]interface{}{
		"card_number": float64(8),
		"step_id":     "s3",
	})
	assert.True(t, result.IsError)
	assert.Contains(t, toolstest.Text(result), "pass content or completed")
	assert.Empty(t, api.Calls())
}

func TestDeleteStep(t *testing.T) {
	api := toolstest.NewAPI(t)
	api.JSON(http.MethodDelete, "/897362094/cards/8/steps/s1", http.StatusNoContent, nil)
	sc := toolstest.NewServerContext(t, api)
	handler := common.AccountHandler(sc, deleteStep(sc))

	result := toolstest.Call(t, handler, map[string]interface{}{"card_number": float64(8), "step_id": "s1"})
	assert.False(t, result.IsError)
	assert.JSONEq(t, `{"success": true}`, toolstest.Text(result))

	result = toolstest.Call(t, handler, map[string]interface{}{"card_number": float64(8), "step_id": "s2"})
	assert.True(t, result.IsError)
	assert.Contains(t, toolstest.Text(result), "Step s2 was not found")
}
