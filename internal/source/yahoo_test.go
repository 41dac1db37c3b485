package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yahooChartOK = `{
  "chart": {
    "result": [{
      "meta": {"symbol": "AAPL"},
      "timestamp": [1700000000, 1700086400, 1700172800],
      "indicators": {"quote": [{
        "open":   [190.1, 191.0, 192.3],
        "high":   [191.5, 192.2, 193.0],
        "low":    [189.0, 190.4, 191.1],
        "close":  [190.8, 191.9, 192.7],
        "volume": [50000000, 48000000, 51000000]
      }]}
    }],
    "error": null
  }
}`

func TestParseYahooChart(t *testing.T) {
	series, err := ParseYahooChart([]byte(yahooChartOK))
	require.NoError(t, err)
	require.Len(t, series, 3)

	assert.Equal(t, int64(1700000000000), series[0].Timestamp)
	assert.InDelta(t, 190.8, series[0].Close, 1e-9)
	assert.EqualValues(t, 50000000, series[0].Volume)
	// 升序
	assert.Less(t, series[0].Timestamp, series[1].Timestamp)
}

func TestParseYahooChartRaggedArrays(t *testing.T) {
	// close 有 null 的行整根丢弃；open/high/low 的 null 用 close 顶替
	payload := `{
	  "chart": {
	    "result": [{
	      "timestamp": [100, 200, 300],
	      "indicators": {"quote": [{
	        "open":   [null, 20.0],
	        "high":   [null, 21.0, 31.0],
	        "low":    [9.0, null, 29.0],
	        "close":  [10.0, null, 30.0],
	        "volume": [null, 2]
	      }]}
	    }],
	    "error": null
	  }
	}`
	series, err := ParseYahooChart([]byte(payload))
	require.NoError(t, err)
	require.Len(t, series, 2)

	// 下标 0：open 缺失 → 用 close 10.0 顶替，volume 缺失 → 0
	assert.InDelta(t, 10.0, series[0].Open, 1e-9)
	assert.InDelta(t, 9.0, series[0].Low, 1e-9)
	assert.EqualValues(t, 0, series[0].Volume)
	// 下标 1（原下标 2）：high/low 正常，open 数组太短 → close 顶替
	assert.InDelta(t, 30.0, series[1].Open, 1e-9)
	assert.InDelta(t, 31.0, series[1].High, 1e-9)
}

func TestParseYahooChartErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
		kind Kind
	}{
		{"invalid json", `{not json`, KindFormat},
		{"api error", `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`, KindUnavailable},
		{"missing result", `{"chart":{"result":[],"error":null}}`, KindFormat},
		{"empty timestamps", `{"chart":{"result":[{"timestamp":[],"indicators":{"quote":[{}]}}],"error":null}}`, KindNoData},
		{"all closes null", `{"chart":{"result":[{"timestamp":[100],"indicators":{"quote":[{"close":[null]}]}}],"error":null}}`, KindNoData},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseYahooChart([]byte(tc.body))
			require.Error(t, err)
			var se *Error
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tc.kind, se.Kind)
			assert.Equal(t, "yahoo", se.Source)
		})
	}
}

func TestYahooFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/v8/finance/chart/AAPL")
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.Equal(t, "1y", r.URL.Query().Get("range"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		fmt.Fprint(w, yahooChartOK)
	}))
	defer srv.Close()

	y := NewYahooSource(srv.URL, 0)
	series, err := y.Fetch(context.Background(), Request{Ticker: "AAPL", Range: "1y", Interval: "1d"})
	require.NoError(t, err)
	assert.Len(t, series, 3)
}

func TestYahooFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	y := NewYahooSource(srv.URL, 0)
	_, err := y.Fetch(context.Background(), Request{Ticker: "AAPL"})
	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, KindUnavailable, se.Kind)
}

func TestLookbackDays(t *testing.T) {
	assert.Equal(t, 22, LookbackDays("1mo"))
	assert.Equal(t, 252, LookbackDays("1y"))
	assert.Equal(t, 0, LookbackDays("max"))
	// 未知 range 按 1y 处理
	assert.Equal(t, 252, LookbackDays("13mo"))
}
