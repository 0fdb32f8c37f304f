package backoffice_test

import (
	"testing"

	"github.com/aussiebroadwan/escritorio/pkg/officesdk"
	"github.com/stretchr/testify/require"
)

func TestMEIWizardGatesSteps(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	ctx := t.Context()
	s := adminSession(t, baseURL)

	schema, err := s.MEIStepSchema(ctx, 1)
	require.NoError(t, err)
	require.Contains(t, string(schema), "properties")

	reg, err := s.StartMEI(ctx, "")
	require.NoError(t, err)
	require.Equal(t, 1, reg.CurrentStep)

	_, err = s.SaveMEIStep(ctx, reg.ID, 3, map[string]any{})
	require.True(t, officesdk.IsStatus(err, 409))

	_, err = s.SubmitMEI(ctx, reg.ID)
	require.True(t, officesdk.IsStatus(err, 409))
}
