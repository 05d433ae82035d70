package fetcher

import (
	"context"
	"net/http"
	"strings"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
)

func newTestFetcher() *HTTPFetcher {
	return NewHTTPFetcher(HTTPOptions{
		UserAgent:    "test-agent",
		Timeout:      2 * time.Second,
		ProbeTimeout: 500 * time.Millisecond,
		MaxInFlight:  4,
	})
}

func TestFetch_UTF8(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body>東京都渋谷区</body></html>"))
	}))
	defer srv.Close()

	page, err := newTestFetcher().Fetch(context.Background(), srv.URL+"/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Contains(t, string(page.Body), "東京都渋谷区")
	assert.Equal(t, "utf-8", page.Charset)
}

func TestFetch_ShiftJIS(t *testing.T) {
	encoded, err := japanese.ShiftJIS.NewEncoder().String("<html><body>愛知県名古屋市</body></html>")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=Shift_JIS")
		w.Write([]byte(encoded))
	}))
	defer srv.Close()

	page, err := newTestFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, string(page.Body), "愛知県名古屋市")
	assert.Equal(t, "shift_jis", page.Charset)
}

func TestFetch_MetaCharset(t *testing.T) {
	encoded, err := japanese.EUCJP.NewEncoder().String(`<html><head><meta charset="euc-jp"></head><body>大阪府</body></html>`)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(encoded))
	}))
	defer srv.Close()

	page, err := newTestFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, string(page.Body), "大阪府")
}

func TestFetch_UndeclaredUTF8AfterLongHead(t *testing.T) {
	head := "<html><head><style>" + strings.Repeat("body { margin: 0; }\n", 70) + "</style></head>"
	require.Greater(t, len(head), 1024)
	body := head + "<body><footer>愛知県名古屋市 052-123-4567</footer></body></html>"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(body))
	}))
	defer srv.Close()

	page, err := newTestFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "utf-8", page.Charset)
	assert.Contains(t, string(page.Body), "愛知県名古屋市")
}

func TestFetch_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestFetcher().Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
}

func TestFetch_NotHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF"))
	}))
	defer srv.Close()

	_, err := newTestFetcher().Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not html")
}

func TestFetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{Timeout: 100 * time.Millisecond})
	start := time.Now()
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestFetch_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestFetcher().Fetch(ctx, srv.URL)
	require.Error(t, err)
}

func TestProbe_Head(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	res := newTestFetcher().Probe(context.Background(), srv.URL)
	assert.True(t, res.Reachable)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, http.MethodHead, res.Method)
}

func TestProbe_FallsBackToGet(t *testing.T) {
	var gets atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		gets.Add(1)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	res := newTestFetcher().Probe(context.Background(), srv.URL)
	assert.True(t, res.Reachable)
	assert.Equal(t, http.MethodGet, res.Method)
	assert.Equal(t, int32(1), gets.Load())
}

func TestProbe_FollowsRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	res := newTestFetcher().Probe(context.Background(), srv.URL+"/old")
	assert.True(t, res.Reachable)
	assert.Equal(t, srv.URL+"/new", res.FinalURL)
}

func TestProbe_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := newTestFetcher()
	res := f.Probe(context.Background(), srv.URL)
	assert.False(t, res.Reachable)
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)

	closed := httptest.NewServer(http.NotFoundHandler())
	addr := closed.URL
	closed.Close()
	res = f.Probe(context.Background(), addr)
	assert.False(t, res.Reachable)
	assert.NotEmpty(t, res.Error)
	assert.False(t, f.Reachable(context.Background(), addr))
}

func TestDecode_UnknownCharsetFallsBack(t *testing.T) {
	body, name := decode([]byte("plain ascii"), "text/html; charset=bogus-charset")
	assert.Equal(t, "plain ascii", string(body))
	assert.NotEmpty(t, name)
}

func TestDecode_UndeclaredLatin1StaysWindows1252(t *testing.T) {
	body, name := decode([]byte("<html><body>caf\xe9</body></html>"), "text/html")
	assert.Equal(t, "windows-1252", name)
	assert.Contains(t, string(body), "café")
}

func TestValidUTF8(t *testing.T) {
	full := []byte("愛知県")
	assert.True(t, validUTF8(full))
	assert.True(t, validUTF8(full[:len(full)-1]), "rune cut by the size limit")
	assert.False(t, validUTF8([]byte{0xff, 'a'}))
	assert.True(t, validUTF8(nil))
}
