package flagx

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value",
			args:    []string{"-c", "conf.json", "-a", ":5000"},
			allowed: []string{"c", "config"},
			want:    []string{"-c", "conf.json"},
		},
		{
			name:    "double dash with equals",
			args:    []string{"--config=alt.json", "-a", ":5000"},
			allowed: []string{"c", "config"},
			want:    []string{"--config=alt.json"},
		},
		{
			name:    "allowed names may carry dashes",
			args:    []string{"-c", "x.json"},
			allowed: []string{"-c"},
			want:    []string{"-c", "x.json"},
		},
		{
			name:    "unknown flags and positionals dropped",
			args:    []string{"-x", "1", "--y=2", "positional"},
			allowed: []string{"c"},
			want:    []string{},
		},
		{
			name:    "trailing flag without value",
			args:    []string{"-c"},
			allowed: []string{"c"},
			want:    []string{"-c"},
		},
		{
			name:    "next token is a flag, not a value",
			args:    []string{"-c", "--config=alt.json"},
			allowed: []string{"c", "config"},
			want:    []string{"-c", "--config=alt.json"},
		},
		{
			name:    "repeats keep order",
			args:    []string{"-c", "one.json", "-c", "two.json"},
			allowed: []string{"c"},
			want:    []string{"-c", "one.json", "-c", "two.json"},
		},
		{
			name:    "empty",
			args:    []string{},
			allowed: []string{"c"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowed...)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("FilterArgs() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestConfigFileFlag(t *testing.T) {
	assert.Equal(t, "/etc/short.json", ConfigFileFlag([]string{"-c", "/etc/short.json"}))
	assert.Equal(t, "/etc/long.json", ConfigFileFlag([]string{"-a", ":8080", "-config", "/etc/long.json"}))
	assert.Equal(t, "/etc/eq.json", ConfigFileFlag([]string{"--config=/etc/eq.json"}))
	assert.Equal(t, "/etc/2.json", ConfigFileFlag([]string{"-c", "/etc/1.json", "-config", "/etc/2.json"}))
	assert.Empty(t, ConfigFileFlag([]string{"-x", "1"}))
	assert.Empty(t, ConfigFileFlag(nil))
}
