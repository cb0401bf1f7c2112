package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateKind(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid kind - single word",
			kind: "attendance",
		},
		{
			name: "valid kind - with hyphen",
			kind: "training-plan",
		},
		{
			name: "valid kind - with numbers",
			kind: "form2",
		},
		{
			name:    "empty kind",
			kind:    "",
			wantErr: true,
			errMsg:  "cannot be empty",
		},
		{
			name:    "uppercase letters",
			kind:    "Attendance",
			wantErr: true,
			errMsg:  "lowercase letters",
		},
		{
			name:    "starts with digit",
			kind:    "2fa",
			wantErr: true,
			errMsg:  "starting with a letter",
		},
		{
			name:    "contains space",
			kind:    "generic form",
			wantErr: true,
		},
		{
			name:    "reserved kind",
			kind:    "all",
			wantErr: true,
			errMsg:  "is reserved",
		},
		{
			name: "kind starting with all",
			kind: "all-hands",
		},
		{
			name:    "too long",
			kind:    "a" + string(make([]byte, MaxKindLen)),
			wantErr: true,
			errMsg:  "must not exceed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKind(tt.kind)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.errMsg != "" {
				assert.Contains(t, err.Error(), tt.errMsg)
			}
		})
	}
}

func TestValidateEndpoint(t *testing.T) {
	for _, endpoint := range []string{"/rest/v1/attendance", "rest/v1/messages", "https://api.example.com/rest/v1/plans"} {
		assert.NoError(t, ValidateEndpoint(endpoint), endpoint)
	}

	for _, endpoint := range []string{"", "   ", "/rest/v1/bad path", "https:///missing-host"} {
		assert.Error(t, ValidateEndpoint(endpoint), endpoint)
	}
}

func TestValidateMethod(t *testing.T) {
	for _, method := range []string{"", "POST", "put", "PATCH", "DELETE"} {
		assert.NoError(t, ValidateMethod(method), method)
	}

	err := ValidateMethod("GET")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be queued")
}
