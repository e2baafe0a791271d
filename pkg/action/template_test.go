package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTemplate(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		names  []string
		values map[string]string
		want   string
	}{
		{
			name:   "placeholder and escape",
			raw:    "https://api.x/orders/{order_id}?note={{fixed}}",
			names:  []string{"order_id"},
			values: map[string]string{"order_id": "7"},
			want:   "https://api.x/orders/7?note={fixed}",
		},
		{
			name:  "no placeholders",
			raw:   "https://api.x/items",
			names: nil,
			want:  "https://api.x/items",
		},
		{
			name:   "repeated placeholder",
			raw:    "/{id}/x/{id}",
			names:  []string{"id"},
			values: map[string]string{"id": "1"},
			want:   "/1/x/1",
		},
		{
			name:  "unbalanced braces stay literal",
			raw:   "/a/{not-a-word}/{open",
			names: nil,
			want:  "/a/{not-a-word}/{open",
		},
		{
			name:  "escape with a placeholder-shaped body is never substituted",
			raw:   "/{{id}}",
			names: nil,
			want:  "/{id}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := ParseTemplate(tt.raw)
			assert.Equal(t, tt.names, tpl.Placeholders())

			got, err := tpl.Render(tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTemplate_RenderMissing(t *testing.T) {
	tpl := ParseTemplate("/users/{user}/orders/{order}")

	_, err := tpl.Render(map[string]string{"user": "u1"})
	var missing *MissingPlaceholderError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "order", missing.Name)

	assert.Equal(t, "/users/u1/orders/{order}", tpl.RenderPartial(map[string]string{"user": "u1"}))
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "cancel_order", SanitizeName("cancel_order"))
	assert.Equal(t, "cancel_order_", SanitizeName("cancel order!"))
	assert.Equal(t, "v1.fetch-orders", SanitizeName("v1.fetch-orders"))
	assert.Equal(t, "__", SanitizeName("日本"))
}
