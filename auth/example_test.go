package auth_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/jonwraymond/inspirehep-mcp/auth"
)

func ExampleNewAPIKeyAuthenticator() {
	store := auth.NewMemoryAPIKeyStore()
	store.AddKey("alice", "s3cret", "reader")

	authn := auth.NewAPIKeyAuthenticator(auth.APIKeyConfig{}, store)
	req := &auth.AuthRequest{Headers: http.Header{"X-Api-Key": {"s3cret"}}}

	result, _ := authn.Authenticate(context.Background(), req)
	fmt.Println(result.Authenticated, result.Identity.Principal, result.Identity.Roles)
	// Output: true alice [reader]
}

func ExampleParseToolPolicy() {
	policy, err := auth.ParseToolPolicy("reader=search_papers,get_*,!get_references;admin=*")
	if err != nil {
		fmt.Println(err)
		return
	}

	reader := &auth.Identity{Principal: "alice", Roles: []string{"reader"}}
	fmt.Println(policy.Allowed(reader, "get_bibtex"))
	fmt.Println(policy.Allowed(reader, "get_references"))

	err = policy.Authorize(context.Background(), &auth.AuthzRequest{
		Subject: reader,
		Tool:    "get_references",
		Action:  auth.ActionCall,
	})
	fmt.Println(errors.Is(err, auth.ErrForbidden))
	// Output:
	// true
	// false
	// true
}

func ExampleMiddleware() {
	store := auth.NewMemoryAPIKeyStore()
	store.AddKey("alice", "s3cret")

	h := auth.Middleware(auth.NewAPIKeyAuthenticator(auth.APIKeyConfig{}, store))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "hello ", auth.PrincipalFromContext(r.Context()))
		}),
	)

	for _, key := range []string{"s3cret", "wrong"} {
		req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
		req.Header.Set("X-API-Key", key)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		fmt.Println(rec.Code)
	}
	// Output:
	// 200
	// 401
}

func ExampleHashAPIKey() {
	fmt.Println(auth.HashAPIKey("s3cret")[:16])
	// Output: 1ec1c26b50d5d3c5
}
