package httpd_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	broker "github.com/jdziat/simple-message-broker"
	"github.com/jdziat/simple-message-broker/httpd"
)

func setupServer(t *testing.T, opts ...broker.Option) (*broker.Broker, *httptest.Server) {
	t.Helper()
	b := broker.New(opts...)
	srv := httptest.NewServer(httpd.Handler(b))
	t.Cleanup(func() {
		srv.Close()
		b.Close()
	})
	return b, srv
}

func doPut(t *testing.T, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPut, url, strings.NewReader(body))
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func doGet(t *testing.T, url string) *http.Response {
	t.Helper()
	res, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func readBody(t *testing.T, res *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return string(body)
}

// TestHandler_SmokeScenario is the sequence the service's integration check
// runs: two PUTs, two in-order GETs, then a timed GET on the empty queue.
func TestHandler_SmokeScenario(t *testing.T) {
	_, srv := setupServer(t)
	url := srv.URL + "/queue/first"

	res := doPut(t, url, `{"message": "message 1"}`)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	res = doPut(t, url, `{"message": "message 2"}`)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res = doGet(t, url)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"message": "message 1"}`, readBody(t, res))

	res = doGet(t, url)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"message": "message 2"}`, readBody(t, res))

	start := time.Now()
	res = doGet(t, url+"?timeout=1")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.GreaterOrEqual(t, time.Since(start), time.Second)
}

func TestHandler_PayloadReturnedVerbatim(t *testing.T) {
	_, srv := setupServer(t)
	url := srv.URL + "/queue/verbatim"
	payload := `{"outer":{"inner":[1,2,3]},"text":"héllo"}`

	res := doPut(t, url, payload)
	require.Equal(t, http.StatusOK, res.StatusCode)

	res = doGet(t, url)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))
	assert.NotEmpty(t, res.Header.Get("X-Message-Id"))
	assert.Equal(t, payload, readBody(t, res))
}

func TestHandler_GetEmptyWithoutTimeout(t *testing.T) {
	_, srv := setupServer(t)

	start := time.Now()
	res := doGet(t, srv.URL+"/queue/empty")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Less(t, time.Since(start), time.Second, "poll without timeout must not block")
}

func TestHandler_LongPollDeliveredByConcurrentPut(t *testing.T) {
	_, srv := setupServer(t)
	url := srv.URL + "/queue/poll"

	type result struct {
		status int
		body   string
	}
	got := make(chan result, 1)
	go func() {
		res, err := http.Get(url + "?timeout=5")
		if err != nil {
			got <- result{status: -1}
			return
		}
		defer res.Body.Close()
		body, _ := io.ReadAll(res.Body)
		got <- result{status: res.StatusCode, body: string(body)}
	}()

	// Give the GET a moment to block, then feed it.
	time.Sleep(100 * time.Millisecond)
	start := time.Now()
	res := doPut(t, url, `{"message":"wakeup"}`)
	require.Equal(t, http.StatusOK, res.StatusCode)

	select {
	case r := <-got:
		require.Equal(t, http.StatusOK, r.status)
		assert.JSONEq(t, `{"message":"wakeup"}`, r.body)
		assert.Less(t, time.Since(start), 2*time.Second)
	case <-time.After(5 * time.Second):
		t.Fatal("long-poll GET never returned")
	}
}

func TestHandler_BadRequests(t *testing.T) {
	_, srv := setupServer(t)

	// Malformed JSON body.
	res := doPut(t, srv.URL+"/queue/first", `{"broken`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	// Invalid queue name.
	res = doPut(t, srv.URL+"/queue/1bad", `{}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	// Garbage timeout.
	res = doGet(t, srv.URL+"/queue/first?timeout=soon")
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	// Negative timeout.
	res = doGet(t, srv.URL+"/queue/first?timeout=-1")
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestHandler_ExplicitZeroTimeoutPolls(t *testing.T) {
	_, srv := setupServer(t)

	res := doGet(t, srv.URL+"/queue/empty?timeout=0")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestHandler_LimitsMapTo429(t *testing.T) {
	_, srv := setupServer(t, broker.WithMaxQueues(1), broker.WithMaxMessagesPerQueue(1))

	res := doPut(t, srv.URL+"/queue/only", `{}`)
	require.Equal(t, http.StatusOK, res.StatusCode)

	res = doPut(t, srv.URL+"/queue/only", `{}`)
	assert.Equal(t, http.StatusTooManyRequests, res.StatusCode)

	res = doPut(t, srv.URL+"/queue/other", `{}`)
	assert.Equal(t, http.StatusTooManyRequests, res.StatusCode)
}

func TestHandler_ClosedBrokerMapsTo503(t *testing.T) {
	b, srv := setupServer(t)
	b.Close()

	res := doPut(t, srv.URL+"/queue/first", `{}`)
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	_, srv := setupServer(t)

	res, err := http.Post(srv.URL+"/queue/first", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
}
