package board_tools

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/fizzy-mcp/internal/fizzy"
	"github.com/teemow/fizzy-mcp/internal/pagination"
	"github.com/teemow/fizzy-mcp/internal/tools/common"
	"github.com/teemow/fizzy-mcp/internal/tools/toolstest"
)

func TestRegisterBoardTools(t *testing.T) {
	api := toolstest.NewAPI(t)
	s := toolstest.NewMCPServer()

	require.NoError(t, RegisterBoardTools(s, toolstest.NewServerContext(t, api)))
	assert.Equal(t, []string{
		"fizzy_get_board",
		"fizzy_list_boards",
		"fizzy_list_columns",
		"fizzy_list_tags",
		"fizzy_list_users",
	}, toolstest.ToolNames(t, s))
}

func TestListBoards_Pagination(t *testing.T) {
	api := toolstest.NewAPI(t)
	api.Handle(http.MethodGet, "/897362094/boards", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "2" {
			_, _ = w.Write([]byte(`[{"id":"b3","name":"Ops"}]`))
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<%s/897362094/boards?page=2>; rel="next"`, "http://"+r.Host))
		_, _ = w.Write([]byte(`[{"id":"b1","name":"Product"},{"id":"b2","name":"Design"}]`))
	})
	sc := toolstest.NewServerContext(t, api)
	handler := listBoardsHandler(sc)

	var first pagination.Page[fizzy.Board]
	toolstest.Decode(t, toolstest.Call(t, handler, nil), &first)
	require.Len(t, first.Items, 2)
	assert.Equal(t, 2, first.Pagination.Returned)
	assert.True(t, first.Pagination.HasMore)
	require.NotEmpty(t, first.Pagination.NextCursor)

	var second pagination.Page[fizzy.Board]
	toolstest.Decode(t, toolstest.Call(t, handler, map[string]interface{}{"cursor": first.Pagination.NextCursor}), &second)
	require.Len(t, second.Items, 1)
	assert.Equal(t, "Ops", second.Items[0].Name)
	assert.False(t, second.Pagination.HasMore)
	assert.Empty(t, second.Pagination.NextCursor)
}

func TestListBoards_InvalidCursor(t *testing.T) {
	api := toolstest.NewAPI(t)
	sc := toolstest.NewServerContext(t, api)

	result := toolstest.Call(t, listBoardsHandler(sc), map[string]interface{}{
		"account": toolstest.Account,
		"cursor":  "not-a-cursor",
	})

	assert.True(t, result.IsError)
	assert.Contains(t, toolstest.Text(result), "Invalid cursor")
	assert.Empty(t, api.Requests())
}

func TestListTools_InvalidCursorWithoutAccount(t *testing.T) {
	api := toolstest.NewAPI(t)
	sc := toolstest.NewServerContext(t, api)
	foreign := pagination.EncodeCursor("https://elsewhere.example.com/1/tags?page=2")

	handlers := map[string]common.ToolHandler{
		"boards":  listBoardsHandler(sc),
		"columns": listColumnsHandler(sc),
		"tags":    listTagsHandler(sc),
		"users":   listUsersHandler(sc),
	}
	for name, handler := range handlers {
		t.Run(name, func(t *testing.T) {
			result := toolstest.Call(t, handler, map[string]interface{}{
				"board_id": "b1",
				"cursor":   "not-a-cursor",
			})
			assert.True(t, result.IsError)
			assert.Contains(t, toolstest.Text(result), "Invalid cursor")

			result = toolstest.Call(t, handler, map[string]interface{}{
				"board_id": "b1",
				"cursor":   foreign,
			})
			assert.True(t, result.IsError)
			assert.Contains(t, toolstest.Text(result), "Invalid cursor")
		})
	}
	assert.Empty(t, api.Requests())
}

func TestGetBoard(t *testing.T) {
	api := toolstest.NewAPI(t)
	api.JSON(http.MethodGet, "/897362094/boards/b1", http.StatusOK, fizzy.Board{ID: "b1", Name: "Product"})
	sc := toolstest.NewServerContext(t, api)
	handler := common.AccountHandler(sc, getBoard(sc))

	var board fizzy.Board
	toolstest.Decode(t, toolstest.Call(t, handler, map[string]interface{}{"board_id": "b1"}), &board)
	assert.Equal(t, "Product", board.Name)

	result := toolstest.Call(t, handler, map[string]interface{}{"board_id": "missing"})
	assert.True(t, result.IsError)
	assert.Contains(t, toolstest.Text(result), "Board missing was not found in account 897362094")

	result = toolstest.Call(t, handler, nil)
	assert.True(t, result.IsError)
	assert.Equal(t, "Invalid board_id: is required", toolstest.Text(result))
}

func TestListColumns(t *testing.T) {
	api := toolstest.NewAPI(t)
	api.JSON(http.MethodGet, "/897362094/boards/b1/columns", http.StatusOK, []fizzy.Column{{ID: "c1", Name: "Doing"}})
	sc := toolstest.NewServerContext(t, api)
	handler := listColumnsHandler(sc)

	var page pagination.Page[fizzy.Column]
	toolstest.Decode(t, toolstest.Call(t, handler, map[string]interface{}{"board_id": "b1"}), &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Doing", page.Items[0].Name)

	result := toolstest.Call(t, handler, nil)
	assert.True(t, result.IsError)
}

func TestListTagsAndUsers(t *testing.T) {
	api := toolstest.NewAPI(t)
	api.JSON(http.MethodGet, "/897362094/tags", http.StatusOK, []fizzy.Tag{{ID: "t1", Title: "bug"}})
	api.JSON(http.MethodGet, "/897362094/users", http.StatusOK, []fizzy.User{{ID: "u1", Name: "Ada"}})
	sc := toolstest.NewServerContext(t, api)

	var tags pagination.Page[fizzy.Tag]
	toolstest.Decode(t, toolstest.Call(t, listTagsHandler(sc), nil), &tags)
	assert.Equal(t, []fizzy.Tag{{ID: "t1", Title: "bug"}}, tags.Items)

	var users pagination.Page[fizzy.User]
	toolstest.Decode(t, toolstest.Call(t, listUsersHandler(sc), nil), &users)
	require.Len(t, users.Items, 1)
	assert.Equal(t, "Ada", users.Items[0].Name)

	assert.Equal(t, []string{"GET /897362094/tags", "GET /897362094/users"}, api.Calls())
}
