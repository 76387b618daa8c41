package atcoder

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProblemsURL(t *testing.T) {
	assert.Equal(t,
		"https://kenkoooo.com/atcoder/resources/merged-problems.json",
		ProblemsURL("https://kenkoooo.com/atcoder"))
}

func TestSubmissionsURL(t *testing.T) {
	assert.Equal(t,
		"https://kenkoooo.com/atcoder/atcoder-api/v3/user/submissions?user=tourist&from_second=1600000000",
		SubmissionsURL("https://kenkoooo.com/atcoder", "tourist", 1600000000))
}

func TestSubmissionsURLEscapesUser(t *testing.T) {
	got := SubmissionsURL("http://example.com", "a&b=c", 0)
	assert.Equal(t, "http://example.com/atcoder-api/v3/user/submissions?user=a%26b%3Dc&from_second=0", got)
}

func responseWith(body []byte, encoding string) *http.Response {
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{},
		Body:       io.NopCloser(bytes.NewReader(body)),
	}
	if encoding != "" {
		resp.Header.Set("Content-Encoding", encoding)
	}
	return resp
}

func TestDecodeJSONPlainBody(t *testing.T) {
	resp := responseWith([]byte(`[{"id":1,"epoch_second":2,"problem_id":"abc001_a","result":"AC"}]`), "")
	defer resp.Body.Close()

	var submissions []Submission
	require.NoError(t, DecodeJSON(resp, &submissions))
	require.Len(t, submissions, 1)
	assert.Equal(t, "abc001_a", submissions[0].ProblemID)
	assert.Equal(t, ResultAccepted, submissions[0].Result)
	assert.EqualValues(t, 2, submissions[0].EpochSecond)
}

func TestDecodeJSONGzipBody(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(`[{"id":"abc001_a","title":"Snow","point":100},{"id":"abc001_b","title":"Unrated","point":null}]`))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	resp := responseWith(buf.Bytes(), "gzip")
	defer resp.Body.Close()

	var data []ProblemDatum
	require.NoError(t, DecodeJSON(resp, &data))
	require.Len(t, data, 2)
	require.NotNil(t, data[0].Point)
	assert.Equal(t, 100.0, *data[0].Point)
	assert.Nil(t, data[1].Point)
}

func TestDecodeJSONCorruptGzip(t *testing.T) {
	resp := responseWith([]byte("not gzip at all"), "gzip")
	defer resp.Body.Close()

	var data []ProblemDatum
	assert.Error(t, DecodeJSON(resp, &data))
}
