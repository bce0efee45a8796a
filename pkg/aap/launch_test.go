package aap_test

import (
	"encoding/json"
	"testing"

	"github.com/fivetwenty-io/aap-client/pkg/aap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func credential(id int, name string, credType int, typeName string) aap.Credential {
	return aap.Credential{
		ID:             id,
		Name:           name,
		CredentialType: credType,
		SummaryFields: aap.CredentialSummaryFields{
			CredentialType: aap.CredentialTypeSummary{ID: credType, Name: typeName},
		},
	}
}

func TestLaunchJobTemplate_ValidateCredentials(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		credentials []aap.Credential
		wantErr     string
	}{
		{
			name: "distinct types",
			credentials: []aap.Credential{
				credential(1, "ssh", 1, "Machine"),
				credential(2, "vault", 3, "Vault"),
			},
		},
		{
			name: "one duplicated type",
			credentials: []aap.Credential{
				credential(1, "ssh-b", 1, "Machine"),
				credential(2, "vault", 3, "Vault"),
				credential(3, "ssh-a", 1, "Machine"),
			},
			wantErr: "cannot assign multiple credentials of the same credential type: Machine (ssh-a, ssh-b)",
		},
		{
			name: "two duplicated types",
			credentials: []aap.Credential{
				credential(1, "ssh-a", 1, "Machine"),
				credential(2, "ssh-b", 1, "Machine"),
				credential(3, "aws-a", 5, "Amazon Web Services"),
				credential(4, "aws-b", 5, "Amazon Web Services"),
			},
			wantErr: "Machine (ssh-a, ssh-b); Amazon Web Services (aws-a, aws-b)",
		},
		{
			name: "type name falls back to id",
			credentials: []aap.Credential{
				{ID: 1, Name: "a", CredentialType: 7},
				{ID: 2, Name: "b", CredentialType: 7},
			},
			wantErr: "credential type 7 (a, b)",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			launch := &aap.LaunchJobTemplate{Credentials: testCase.credentials}

			err := launch.ValidateCredentials()
			if testCase.wantErr == "" {
				require.NoError(t, err)

				return
			}

			require.ErrorIs(t, err, aap.ErrDuplicateCredentialType)
			assert.Contains(t, err.Error(), testCase.wantErr)
		})
	}
}

func TestLaunchJobTemplate_Request(t *testing.T) {
	t.Parallel()

	t.Run("only set fields are sent", func(t *testing.T) {
		t.Parallel()

		launch := &aap.LaunchJobTemplate{Template: aap.JobTemplate{ID: 21}}

		data, err := json.Marshal(launch.Request())
		require.NoError(t, err)
		assert.JSONEq(t, `{}`, string(data))
	})

	t.Run("zero values are kept", func(t *testing.T) {
		t.Parallel()

		zero := 0
		slices := 3
		off := false
		limit := "web"

		launch := &aap.LaunchJobTemplate{
			Template:             aap.JobTemplate{ID: 21},
			Inventory:            &aap.Inventory{ID: 2},
			Credentials:          []aap.Credential{{ID: 4}, {ID: 5, CredentialType: 2}},
			ExtraVariables:       map[string]interface{}{"app": "shop"},
			Limit:                &limit,
			ExecutionEnvironment: &aap.ExecutionEnvironment{ID: 11},
			Verbosity:            &zero,
			Forks:                &zero,
			JobSliceCount:        &slices,
			Timeout:              &zero,
			DiffMode:             &off,
		}

		data, err := json.Marshal(launch.Request())
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"inventory": 2,
			"credentials": [4, 5],
			"extra_vars": {"app": "shop"},
			"limit": "web",
			"execution_environment": 11,
			"verbosity": 0,
			"forks": 0,
			"job_slice_count": 3,
			"timeout": 0,
			"diff_mode": false
		}`, string(data))
	})
}
