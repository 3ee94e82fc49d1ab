package croft_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crofthq/croft"
)

func echoParam(name string) croft.HandlerFunc {
	return func(_ context.Context, _ *croft.Request, args *croft.Args) (croft.Response, error) {
		val, _ := args.PathParams.Get(name)
		return croft.Text(val).IntoResponse(), nil
	}
}

func textHandler(body string) croft.HandlerFunc {
	return func(context.Context, *croft.Request, *croft.Args) (croft.Response, error) {
		return croft.Text(body).IntoResponse(), nil
	}
}

func TestStaticWinsOverParam(t *testing.T) {
	ro := croft.NewRouterWith(croft.NewTestLogger(t), croft.NewReverser())
	ro.Resource("/users/me").HandleFunc(http.MethodGet, textHandler("it's me"))
	ro.Resource("/users/{id}").HandleFunc(http.MethodGet, echoParam("id"))

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/me", nil)
	ro.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "it's me", rec.Body.String())

	rec, req = httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/42", nil)
	ro.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "42", rec.Body.String())
}

func TestWildcardIsGreedyAndTerminal(t *testing.T) {
	ro := croft.NewRouterWith(croft.NewTestLogger(t), croft.NewReverser())
	ro.Resource("/files/*rest").HandleFunc(http.MethodGet, echoParam("rest"))

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/files/a/b/c", nil)
	ro.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "a/b/c", rec.Body.String())
}

func TestParamWinsOverWildcard(t *testing.T) {
	ro := croft.NewRouterWith(croft.NewTestLogger(t), croft.NewReverser())
	ro.Resource("/x/{p}").HandleFunc(http.MethodGet, echoParam("p"))
	ro.Resource("/x/*rest").HandleFunc(http.MethodGet, echoParam("rest"))

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x/one", nil)
	ro.ServeHTTP(rec, req)
	require.Equal(t, "one", rec.Body.String())

	// the parameter child takes the segment; descent below it dead-ends
	// without backtracking to the wildcard
	rec, req = httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x/one/two", nil)
	ro.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	ro := croft.NewRouterWith(croft.NewTestLogger(t), croft.NewReverser())
	ro.Resource("/things").
		HandleFunc(http.MethodGet, textHandler("get")).
		HandleFunc(http.MethodPost, textHandler("post"))

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/things", nil)
	ro.ServeHTTP(rec, req)

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Equal(t, "GET, POST", rec.Header().Get("Allow"))
}

func TestCustomUnsupportedMethodHandler(t *testing.T) {
	ro := croft.NewRouterWith(croft.NewTestLogger(t), croft.NewReverser())
	ro.Resource("/things").
		HandleFunc(http.MethodGet, textHandler("get")).
		SetUnsupportedMethodHandler(croft.HandlerFunc(
			func(_ context.Context, req *croft.Request, _ *croft.Args) (croft.Response, error) {
				allowed, ok := croft.ExtensionFrom[croft.AllowedMethods](req.Extensions)
				require.True(t, ok)

				resp := croft.NewResponse(http.StatusTeapot)
				resp.Header.Set("Allow", string(allowed))

				return resp, nil
			}))

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/things", nil)
	ro.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTeapot, rec.Code)
	require.Equal(t, "GET", rec.Header().Get("Allow"))
}

func TestWildcardMethodHandler(t *testing.T) {
	ro := croft.NewRouterWith(croft.NewTestLogger(t), croft.NewReverser())
	ro.Resource("/any").
		HandleFunc(http.MethodGet, textHandler("get")).
		HandleAll(textHandler("anything"))

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/any", nil)
	ro.ServeHTTP(rec, req)
	require.Equal(t, "get", rec.Body.String())

	rec, req = httptest.NewRecorder(), httptest.NewRequest(http.MethodPatch, "/any", nil)
	ro.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "anything", rec.Body.String())
}

func TestNotFoundCarriesUnusedRequest(t *testing.T) {
	ro := croft.NewRouterWith(croft.NewTestLogger(t), croft.NewReverser())
	ro.Resource("/known").HandleFunc(http.MethodGet, textHandler("known"))

	req := croft.NewRequest(http.MethodGet, "/unknown/path", nil)
	resp := ro.Dispatch(req)

	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	unused, ok := croft.UnusedRequestFrom(&resp)
	require.True(t, ok)
	require.Same(t, req, unused)
	require.Equal(t, "/unknown/path", unused.URL.Path)
}

func TestRedispatchRecoveredRequest(t *testing.T) {
	ro := croft.NewRouterWith(croft.NewTestLogger(t), croft.NewReverser())
	ro.Resource("/known").HandleFunc(http.MethodGet, textHandler("known"))
	ro.Resource("/fallback").HandleFunc(http.MethodGet, textHandler("fallback"))

	resp := ro.Dispatch(croft.NewRequest(http.MethodGet, "/missing", nil))
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	unused, ok := croft.UnusedRequestFrom(&resp)
	require.True(t, ok)

	// a recovered request re-dispatches as a fresh traversal
	unused.URL.Path = "/fallback"
	resp = ro.Dispatch(unused)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, _, err := croft.ReadAllBody(t.Context(), resp.Body)
	require.NoError(t, err)
	require.Equal(t, "fallback", string(data))
}

func TestSubtreeReclaimDropsDeadEndCaptures(t *testing.T) {
	ro := croft.NewRouterWith(croft.NewTestLogger(t), croft.NewReverser())
	ro.Resource("/api").
		Configure(croft.SubtreeHandler).
		HandleAll(croft.HandlerFunc(
			func(_ context.Context, _ *croft.Request, args *croft.Args) (croft.Response, error) {
				require.Empty(t, args.PathParams)
				return croft.Text("reclaimed " + args.RemainingPath).IntoResponse(), nil
			}))
	ro.Resource("/api/{id}/x").HandleFunc(http.MethodGet, echoParam("id"))

	// the registered route still captures
	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/42/x", nil)
	ro.ServeHTTP(rec, req)
	require.Equal(t, "42", rec.Body.String())

	// a dead end below {id} is reclaimed without the failed descent's capture
	rec, req = httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/42/y", nil)
	ro.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "reclaimed 42/y", rec.Body.String())
}

func TestDispatchScenario(t *testing.T) {
	// tree: /a/{x}/b with a GET handler returning the captured x
	ro := croft.NewRouterWith(croft.NewTestLogger(t), croft.NewReverser())
	ro.Resource("/a/{x}/b").HandleFunc(http.MethodGet, echoParam("x"))

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/a/42/b", nil)
	ro.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "42", rec.Body.String())

	rec, req = httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/a/42/c", nil)
	ro.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec, req = httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/a/42/b", nil)
	ro.ServeHTTP(rec, req)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Equal(t, "GET", rec.Header().Get("Allow"))
}

func TestSubtreeHandlerReclaimsUnmatched(t *testing.T) {
	ro := croft.NewRouterWith(croft.NewTestLogger(t), croft.NewReverser())
	ro.Resource("/api").
		Configure(croft.SubtreeHandler).
		HandleAll(croft.HandlerFunc(
			func(_ context.Context, req *croft.Request, _ *croft.Args) (croft.Response, error) {
				return croft.Text("api: " + req.URL.Path).IntoResponse(), nil
			}))
	ro.Resource("/api/items").HandleFunc(http.MethodGet, textHandler("items"))

	// exact child match still wins
	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/items", nil)
	ro.ServeHTTP(rec, req)
	require.Equal(t, "items", rec.Body.String())

	// dead ends below /api are reclaimed instead of 404ing
	rec, req = httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/anything/else", nil)
	ro.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "api: /api/anything/else", rec.Body.String())
}

func TestPercentDecodedCaptures(t *testing.T) {
	ro := croft.NewRouterWith(croft.NewTestLogger(t), croft.NewReverser())
	ro.Resource("/tags/{tag}").HandleFunc(http.MethodGet, echoParam("tag"))

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/tags/hello%20world", nil)
	ro.ServeHTTP(rec, req)

	require.Equal(t, "hello world", rec.Body.String())
}

func TestRootResource(t *testing.T) {
	ro := croft.NewRouterWith(croft.NewTestLogger(t), croft.NewReverser())
	ro.Resource("/").HandleFunc(http.MethodGet, textHandler("root"))

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)
	ro.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "root", rec.Body.String())
}

func TestHandlePatternAndReverse(t *testing.T) {
	ro := croft.NewRouterWith(croft.NewTestLogger(t), croft.NewReverser())
	ro.HandleFunc("GET /users/{id}", echoParam("id"), "get-user")

	url, err := ro.Reverse("get-user", "123")
	require.NoError(t, err)
	require.Equal(t, "/users/123", url)

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/7", nil)
	ro.ServeHTTP(rec, req)
	require.Equal(t, "7", rec.Body.String())
}

func TestDuplicateMethodRegistrationPanics(t *testing.T) {
	ro := croft.NewRouterWith(croft.NewTestLogger(t), croft.NewReverser())
	rsc := ro.Resource("/dup").HandleFunc(http.MethodGet, textHandler("one"))

	require.Panics(t, func() {
		rsc.HandleFunc(http.MethodGet, textHandler("two"))
	})
}

func TestAmbiguousParamChildPanics(t *testing.T) {
	ro := croft.NewRouterWith(croft.NewTestLogger(t), croft.NewReverser())
	ro.Resource("/users/{id}")

	require.Panics(t, func() {
		ro.Resource("/users/{name}")
	})
}

func TestRegistrationAfterServingPanics(t *testing.T) {
	ro := croft.NewRouterWith(croft.NewTestLogger(t), croft.NewReverser())
	rsc := ro.Resource("/frozen").HandleFunc(http.MethodGet, textHandler("ok"))

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/frozen", nil)
	ro.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Panics(t, func() {
		rsc.HandleFunc(http.MethodPost, textHandler("late"))
	})
}

func TestConcurrentDispatch(t *testing.T) {
	ro := croft.NewRouterWith(croft.NewTestLogger(t), croft.NewReverser())
	ro.Resource("/users/{id}").HandleFunc(http.MethodGet, echoParam("id"))

	done := make(chan struct{})
	for range 8 {
		go func() {
			defer func() { done <- struct{}{} }()

			for range 50 {
				rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/7", nil)
				ro.ServeHTTP(rec, req)
				require.Equal(t, "7", rec.Body.String())
			}
		}()
	}

	for range 8 {
		<-done
	}
}
