package entrypoint

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/givin-app/givin/internal/config"
	"github.com/givin-app/givin/internal/database"
)

func TestNewPipeline_DatePolicy(t *testing.T) {
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tests := []struct {
		policy  string
		wantErr bool
	}{
		{"", false},
		{"reject", false},
		{"Substitute", false},
		{" SUBSTITUTE ", false},
		{"sometimes", true},
	}
	for _, tt := range tests {
		t.Run(tt.policy, func(t *testing.T) {
			cfg := &config.Config{Import: config.Import{DatePolicy: tt.policy}}

			pipeline, err := NewPipeline(db, nil, cfg)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, pipeline)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, pipeline)
		})
	}
}

func TestMetricsOptions(t *testing.T) {
	assert.Equal(t, 12, MetricsOptions(config.Metrics{Months: 12}).Months)
	assert.Greater(t, MetricsOptions(config.Metrics{}).Months, 0)
}
