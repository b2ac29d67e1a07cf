package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formsubmit/pkg/render"
)

func TestRenderOptions_HiddenInputs(t *testing.T) {
	tests := []struct {
		name string
		csrf render.CSRF
		want []render.HiddenField
	}{
		{
			name: "no token",
			csrf: render.CSRF{Field: "csrf_token"},
		},
		{
			name: "blank token",
			csrf: render.CSRF{Token: "   "},
		},
		{
			name: "default field",
			csrf: render.CSRF{Token: "tok"},
			want: []render.HiddenField{{Name: render.DefaultCSRFField, Value: "tok"}},
		},
		{
			name: "custom field is trimmed",
			csrf: render.CSRF{Field: " csrf_token ", Token: "tok"},
			want: []render.HiddenField{{Name: "csrf_token", Value: "tok"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := render.RenderOptions{CSRF: tt.csrf}.HiddenInputs()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("hidden inputs mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
