// Package account decides which Fizzy account a tool call applies to.
//
// A Resolver tries, in order: the account passed with the call, the account
// of the current Session, the FIZZY_ACCOUNT environment variable, and finally
// auto-detection through the identity endpoint. Auto-detection succeeds only
// when the token reaches exactly one account; its result is remembered both
// in the Session and in a resolver cache. The two are cleared independently.
package account
