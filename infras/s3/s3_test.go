package s3

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"crm/config"
	"crm/infras/otel/mocks"
)

func TestGetObjectNameFromURL(t *testing.T) {
	cfg := &config.Config{}
	cfg.External.S3.PublicDomain = "https://cdn.hotel.test"
	cfg.External.S3.APIEndpoint = "https://s3.hotel.test"
	cfg.External.S3.BucketName = "crm"

	svc := &s3Impl{cfg: cfg, otel: mocks.NewOtel()}

	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "public domain", url: "https://cdn.hotel.test/proposals/BQT-20260301-1.pdf", want: "proposals/BQT-20260301-1.pdf"},
		{name: "public domain with bucket", url: "https://cdn.hotel.test/crm/organizations/a.png", want: "organizations/a.png"},
		{name: "api endpoint", url: "https://s3.hotel.test/crm/organizations/a.png", want: "organizations/a.png"},
		{name: "foreign url", url: "https://example.com/a.png", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.GetObjectNameFromURL("", tt.url))
		})
	}
}
