package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer  = "fieldvault"
	testSignKey = "test-sign-key"
)

func TestGenerateAndValidateJWTToken(t *testing.T) {
	token, err := GenerateJWTToken(testIssuer, "alice@example.com", time.Hour, testSignKey)
	require.NoError(t, err)
	require.NotEmpty(t, token.String())

	parsed, err := ValidateAndParseJWTToken(token.String(), testSignKey, testIssuer)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", parsed.OwnerID)
}

func TestGenerateJWTToken_InvalidParams(t *testing.T) {
	tests := []struct {
		name     string
		issuer   string
		ownerID  string
		duration time.Duration
		signKey  string
	}{
		{name: "empty issuer", ownerID: "alice", duration: time.Hour, signKey: testSignKey},
		{name: "empty owner", issuer: testIssuer, duration: time.Hour, signKey: testSignKey},
		{name: "zero duration", issuer: testIssuer, ownerID: "alice", signKey: testSignKey},
		{name: "empty sign key", issuer: testIssuer, ownerID: "alice", duration: time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GenerateJWTToken(tt.issuer, tt.ownerID, tt.duration, tt.signKey)
			assert.Error(t, err)
		})
	}
}

func TestValidateAndParseJWTToken_WrongKey(t *testing.T) {
	token, err := GenerateJWTToken(testIssuer, "alice@example.com", time.Hour, testSignKey)
	require.NoError(t, err)

	_, err = ValidateAndParseJWTToken(token.String(), "other-key", testIssuer)
	assert.Error(t, err)
}

func TestValidateAndParseJWTToken_WrongIssuer(t *testing.T) {
	token, err := GenerateJWTToken(testIssuer, "alice@example.com", time.Hour, testSignKey)
	require.NoError(t, err)

	_, err = ValidateAndParseJWTToken(token.String(), testSignKey, "someone-else")
	assert.Error(t, err)
}

func TestValidateAndParseJWTToken_Expired(t *testing.T) {
	token, err := GenerateJWTToken(testIssuer, "alice@example.com", -time.Hour, testSignKey)
	require.NoError(t, err)

	_, err = ValidateAndParseJWTToken(token.String(), testSignKey, testIssuer)
	assert.Error(t, err)
}

func TestParseBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "valid", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "missing token", header: "Bearer", wantErr: true},
		{name: "empty header", header: "", wantErr: true},
		{name: "too many parts", header: "Bearer one two", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBearerToken(tt.header)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetOwnerIDFromContext(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), OwnerIDCtxKey, "alice@example.com")
		ownerID, ok := GetOwnerIDFromContext(ctx)
		assert.True(t, ok)
		assert.Equal(t, "alice@example.com", ownerID)
	})

	t.Run("missing", func(t *testing.T) {
		_, ok := GetOwnerIDFromContext(context.Background())
		assert.False(t, ok)
	})

	t.Run("wrong type", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), OwnerIDCtxKey, 42)
		_, ok := GetOwnerIDFromContext(ctx)
		assert.False(t, ok)
	})
}
