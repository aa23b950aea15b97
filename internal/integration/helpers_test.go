package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

var keysToIgnore = map[string]struct{}{
	"timestamp":     {},
	"requestId":     {},
	"createdAt":     {},
	"startTime":     {},
	"expiresAt":     {},
	"reservationId": {},
	"bookingId":     {},
}

func prepareRequest(method, path string, body io.Reader, headers map[string]string) (*http.Request, error) {
	req := httptest.NewRequest(method, path, body)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

func compareResponse(t *testing.T, body io.Reader, expectedResponse string) {
	var actual map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&actual))

	cleanMap(actual)

	var expected map[string]any
	require.NoError(t, json.Unmarshal([]byte(expectedResponse), &expected))

	// ignore indetermistic fields while comparing
	opts := cmpopts.IgnoreMapEntries(func(k string, _ any) bool {
		_, ok := keysToIgnore[k]
		return ok
	})

	if diff := cmp.Diff(expected, actual, opts); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func cleanMap(m map[string]any) {
	for k := range m {
		if _, ok := keysToIgnore[k]; ok {
			delete(m, k)
			continue
		}
		if nested, ok := m[k].(map[string]any); ok {
			cleanMap(nested)
		}
	}
}

func userHeader(userID int64) map[string]string {
	return map[string]string{"X-User-ID": strconv.FormatInt(userID, 10)}
}

func jsonBody(t testing.TB, v any) io.Reader {
	data, err := json.Marshal(v)
	require.NoError(t, err)

	return bytes.NewReader(data)
}

// do sends a request straight to the router and decodes a JSON body into dst
// when dst is not nil.
func do(t testing.TB, handler http.Handler, method, url string, userID int64, body any, dst any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		reader = jsonBody(t, body)
	}

	var headers map[string]string
	if userID != 0 {
		headers = userHeader(userID)
	}

	req, err := prepareRequest(method, url, reader, headers)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if dst != nil && rec.Body.Len() > 0 {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(dst))
	}

	return rec.Code
}

func executeSQLFile(t testing.TB, db *pgxpool.Pool, path string) {
	t.Helper()

	sql, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = db.Exec(context.Background(), string(sql))
	require.NoError(t, err)
}

func flushAllCache(t testing.TB, client *redis.Client) {
	t.Helper()

	require.NoError(t, client.FlushAll(context.Background()).Err())
}

// setupBaseState resets both stores and seeds one venue with two shows,
// four seats and two users.
func setupBaseState(t testing.TB, app *TestApp) {
	t.Helper()

	executeSQLFile(t, app.DB, "testdata/reset.sql")
	flushAllCache(t, app.RedisClient)

	executeSQLFile(t, app.DB, "testdata/venue_up.sql")
}
