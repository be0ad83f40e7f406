package request

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListRequest_Defaults(t *testing.T) {
	req, err := ParseListRequest(url.Values{}, 20, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, req.Page)
	assert.Equal(t, 20, req.PageSize)
	assert.Empty(t, req.Filter)
	assert.Empty(t, req.Sort)
}

func TestParseListRequest_Full(t *testing.T) {
	values := url.Values{}
	values.Set("filter", `["username:eq:admin","description:cn:first"]`)
	values.Set("sort", "createdAt:desc")
	values.Set("page", "2")
	values.Set("pageSize", "10")

	req, err := ParseListRequest(values, 20, 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"username:eq:admin", "description:cn:first"}, req.Filter)
	assert.Equal(t, "createdAt:desc", req.Sort)
	assert.Equal(t, 10, req.Pagination().Skip())
	assert.Equal(t, 10, req.Pagination().Limit())
}

func TestParseListRequest_CapsPageSize(t *testing.T) {
	req, err := ParseListRequest(url.Values{"pageSize": {"1000"}}, 20, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, req.PageSize)
}

func TestParseListRequest_Rejects(t *testing.T) {
	for _, values := range []url.Values{
		{"filter": {"username:eq:admin"}},
		{"page": {"0"}},
		{"page": {"two"}},
		{"pageSize": {"-5"}},
	} {
		_, err := ParseListRequest(values, 20, 100)
		assert.Error(t, err, values.Encode())
	}
}
