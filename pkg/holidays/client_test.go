package holidays

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/olist-etl/pkg/errors"
)

const brazil2017 = `[
 {"date":"2017-01-01","localName":"Confraternização Universal","name":"New Year's Day","countryCode":"BR","fixed":true,"global":true,"counties":null,"launchYear":null,"types":["Public"]},
 {"date":"2017-02-28","localName":"Carnaval","name":"Carnival","countryCode":"BR","fixed":false,"global":true,"counties":null,"launchYear":null,"types":["Bank","Optional"]},
 {"date":"2017-04-21","localName":"Dia de Tiradentes","name":"Tiradentes","countryCode":"BR","fixed":true,"global":true,"counties":["BR-SP"],"launchYear":1965,"types":["Public"]}
]`

func TestClientFetchRequest(t *testing.T) {
	var capturedURL string
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		return jsonResponse(http.StatusOK, brazil2017), nil
	})

	client := NewClient(WithBaseURL("http://holidays.test/api/v3/PublicHolidays/"), WithHTTPClient(&http.Client{Transport: rt}))
	got, err := client.Fetch(context.Background(), "2017")
	require.NoError(t, err)
	require.Equal(t, "http://holidays.test/api/v3/PublicHolidays/2017/BR", capturedURL)

	require.Len(t, got, 3)
	require.Equal(t, time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC), got[0].Date)
	require.Equal(t, "New Year's Day", got[0].Name)
	require.Equal(t, "Carnaval", got[1].LocalName)
	require.False(t, got[1].Fixed)
	require.NotNil(t, got[2].LaunchYear)
	require.Equal(t, 1965, *got[2].LaunchYear)
}

func TestClientFetchUsesCountryOption(t *testing.T) {
	var capturedPath string
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedPath = req.URL.Path
		return jsonResponse(http.StatusOK, `[]`), nil
	})

	client := NewClient(WithBaseURL("http://holidays.test"), WithCountry("ar"), WithHTTPClient(&http.Client{Transport: rt}))
	got, err := client.Fetch(context.Background(), "2018")
	require.NoError(t, err)
	require.Empty(t, got)
	require.Equal(t, "/2018/AR", capturedPath)
}

func TestClientFetchKeepsFirstHolidayPerDay(t *testing.T) {
	body := `[
 {"date":"2017-11-20","name":"Black Awareness Day"},
 {"date":"2017-11-20T00:00:00","name":"Duplicate"},
 {"date":"2017-12-25","name":"Christmas Day"}
]`
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, body), nil
	})

	client := NewClient(WithHTTPClient(&http.Client{Transport: rt}))
	got, err := client.Fetch(context.Background(), "2017")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "Black Awareness Day", got[0].Name)
	require.Equal(t, "Christmas Day", got[1].Name)
}

func TestClientFetchFailures(t *testing.T) {
	tests := map[string]struct {
		year string
		rt   roundTripFunc
		code pkgerrors.Code
	}{
		"short year": {
			year: "17",
			rt: func(*http.Request) (*http.Response, error) {
				t.Fatal("no request expected")
				return nil, nil
			},
			code: pkgerrors.CodeValidation,
		},
		"server error": {
			year: "2017",
			rt: func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusInternalServerError, "boom"), nil
			},
			code: pkgerrors.CodeTransport,
		},
		"not found": {
			year: "2017",
			rt: func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusNotFound, ""), nil
			},
			code: pkgerrors.CodeTransport,
		},
		"transport": {
			year: "2017",
			rt: func(*http.Request) (*http.Response, error) {
				return nil, errors.New("connection refused")
			},
			code: pkgerrors.CodeTransport,
		},
		"malformed body": {
			year: "2017",
			rt: func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `{"date":`), nil
			},
			code: pkgerrors.CodeSourceLoad,
		},
		"missing date": {
			year: "2017",
			rt: func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `[{"name":"Nameless"}]`), nil
			},
			code: pkgerrors.CodeSchema,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			client := NewClient(WithHTTPClient(&http.Client{Transport: tc.rt}))
			_, err := client.Fetch(context.Background(), tc.year)
			require.Error(t, err)
			require.Equal(t, tc.code, pkgerrors.CodeOf(err))
		})
	}
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(WithTimeout(3 * time.Second))
	require.Equal(t, DefaultBaseURL, client.baseURL)
	require.Equal(t, DefaultCountry, client.country)
	require.Equal(t, 3*time.Second, client.httpClient.Timeout)

	custom := &http.Client{}
	client = NewClient(WithTimeout(time.Second), WithHTTPClient(custom))
	require.Same(t, custom, client.httpClient)
}

func TestParseDayTruncatesTime(t *testing.T) {
	dateOnly, err := ParseDay("2017-03-05")
	require.NoError(t, err)

	for _, raw := range []string{
		"2017-03-05T18:45:00Z",
		"2017-03-05T23:10:00-03:00",
		"2017-03-05 08:00:00",
		"2017-03-05T00:00:00",
		"2017-03-05T21:30:00.250",
	} {
		withTime, err := ParseDay(raw)
		require.NoError(t, err, raw)
		require.True(t, withTime.Equal(dateOnly), "%s truncated to %s", raw, withTime)
	}

	_, err = ParseDay("05/03/2017")
	require.Error(t, err)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}
