package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xnairb/mcp-aws-yolo/internal/registry"
	"github.com/0xnairb/mcp-aws-yolo/internal/secrets"
)

func TestReplace(t *testing.T) {
	t.Parallel()

	store := secrets.Store{
		"aws_region":  "eu-west-1",
		"aws_profile": "dev",
	}

	testCases := []struct {
		name     string
		input    Value
		expected Value
	}{
		{
			name:     "plain string untouched",
			input:    "no placeholders here",
			expected: "no placeholders here",
		},
		{
			name:     "single placeholder",
			input:    "--region={{env:aws_region}}",
			expected: "--region=eu-west-1",
		},
		{
			name:     "multiple placeholders in one string",
			input:    "{{env:aws_profile}}@{{env:aws_region}}",
			expected: "dev@eu-west-1",
		},
		{
			name:     "missing key becomes empty",
			input:    "{{env:does_not_exist}}",
			expected: "",
		},
		{
			name:     "string slice",
			input:    []string{"--region", "{{env:aws_region}}"},
			expected: []string{"--region", "eu-west-1"},
		},
		{
			name:     "string map",
			input:    map[string]string{"AWS_REGION": "{{env:aws_region}}"},
			expected: map[string]string{"AWS_REGION": "eu-west-1"},
		},
		{
			name: "nested values",
			input: map[string]Value{
				"args": []Value{"{{env:aws_profile}}", 42},
			},
			expected: map[string]Value{
				"args": []Value{"dev", 42},
			},
		},
		{
			name:     "non-string scalar passes through",
			input:    true,
			expected: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, Replace(tc.input, store))
		})
	}
}

func TestReplace_Idempotent(t *testing.T) {
	t.Parallel()

	store := secrets.Store{"aws_region": "eu-west-1"}
	input := []string{"--region={{env:aws_region}}", "--profile={{env:missing}}"}

	once := Replace(input, store)
	twice := Replace(once, store)
	require.Equal(t, once, twice)

	// No placeholder syntax survives substitution.
	for _, s := range once.([]string) {
		assert.NotContains(t, s, "{{env:")
	}
}

func TestExpand(t *testing.T) {
	t.Parallel()

	desc := registry.ServerDescriptor{
		ServerID: "aws-deploy",
		Command:  "uvx",
		Args: []string{
			"awslabs.deploy-server",
			"--region={{env:aws_region}}",
			"--role-arn={{env:aws_role_arn}}", // unset secret: flag prefix survives
			"  ",
		},
		Env: map[string]string{
			"AWS_PROFILE": "{{env:aws_profile}}",
			"AWS_TOKEN":   "{{env:aws_token}}", // unset secret: entry dropped
			"STATIC":      "value",
		},
	}

	store := secrets.Store{
		"aws_region":  "eu-west-1",
		"aws_profile": "dev",
	}

	spec := Expand(desc, store)

	require.Equal(t, "uvx", spec.Command)
	require.Equal(t, []string{"awslabs.deploy-server", "--region=eu-west-1", "--role-arn="}, spec.Args)
	require.Equal(t, map[string]string{
		"AWS_PROFILE": "dev",
		"STATIC":      "value",
	}, spec.Env)

	// Original descriptor is untouched.
	assert.Contains(t, desc.Args, "--role-arn={{env:aws_role_arn}}")
	assert.Equal(t, "{{env:aws_token}}", desc.Env["AWS_TOKEN"])

	environ := spec.Environ()
	assert.Len(t, environ, 2)
	assert.Contains(t, environ, "AWS_PROFILE=dev")
	assert.Contains(t, environ, "STATIC=value")
}

func TestExpand_ArgDroppedWhenPlaceholderOnly(t *testing.T) {
	t.Parallel()

	desc := registry.ServerDescriptor{
		Command: "npx",
		Args:    []string{"{{env:optional_flag}}"},
		Env:     map[string]string{"OPTIONAL": "{{env:optional_value}}"},
	}

	spec := Expand(desc, secrets.Store{})
	assert.Empty(t, spec.Args)
	assert.Empty(t, spec.Env)
}
