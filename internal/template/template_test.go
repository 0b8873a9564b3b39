package template

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name    string
		tmpl    string
		ctx     *Context
		want    string
		wantErr bool
	}{
		{
			name: "rules and applicant",
			tmpl: "RULES:\n{{.Rules}}\nAPPLICANT:\n{{.ApplicantData}}",
			ctx:  &Context{Rules: "- HS001: x - y", ApplicantData: "PRIMARY DRIVER"},
			want: "RULES:\n- HS001: x - y\nAPPLICANT:\nPRIMARY DRIVER",
		},
		{
			name: "no delimiters passes through",
			tmpl: "plain text",
			ctx:  &Context{},
			want: "plain text",
		},
		{
			name:    "unknown field",
			tmpl:    "{{.Nope}}",
			ctx:     &Context{},
			wantErr: true,
		},
		{
			name:    "bad syntax",
			tmpl:    "{{.Rules",
			ctx:     &Context{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.tmpl, tt.ctx)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"balanced", "concise", "conservative", "detailed", "liberal"}, Names())
}

func TestLoad_EmbeddedTemplates(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			p, err := Load(name)
			require.NoError(t, err)
			assert.Equal(t, name, p.Name())

			out, err := p.Render(&Context{Rules: "RULES-MARKER", ApplicantData: "APPLICANT-MARKER"})
			require.NoError(t, err)
			assert.Contains(t, out, "RULES-MARKER")
			assert.Contains(t, out, "APPLICANT-MARKER")
			// every template must ask for the labels the response parser reads
			for _, label := range []string{"Decision:", "Primary Reason:", "Triggered Rules:", "Risk Factors:"} {
				assert.Contains(t, out, label)
			}
		})
	}
}

func TestLoad_DefaultAndUnknown(t *testing.T) {
	p, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultName, p.Name())

	_, err = Load("aggressive")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownTemplate))
	assert.Contains(t, err.Error(), "balanced")
}
