package storage

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewritePublicURL(t *testing.T) {
	u, err := url.Parse("http://minio.internal:9000/meeting-reports/reports/m-1.json?X-Amz-Signature=abc&X-Amz-Expires=604800")
	require.NoError(t, err)

	assert.Equal(t,
		"https://files.example.com/meeting-reports/reports/m-1.json?X-Amz-Signature=abc&X-Amz-Expires=604800",
		rewritePublicURL(u, "https://files.example.com"),
	)
	assert.Equal(t, u.String(), rewritePublicURL(u, ""))
}
