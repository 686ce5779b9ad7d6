package source

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/regwatch/internal/crawler"
)

func TestDefaultCatalogOrderAndCategories(t *testing.T) {
	t.Parallel()

	all := All()
	require.Len(t, all, 13)
	require.Equal(t, "Ministry of Finance", all[0].Name)
	require.Equal(t, "IRDAI", all[len(all)-1].Name)
	require.Equal(t, []string{CategoryCentral, CategoryMaharashtra, CategoryRegulators}, Default().Categories())

	names := make(map[string]struct{}, len(all))
	for _, src := range all {
		_, dup := names[src.Name]
		require.Falsef(t, dup, "duplicate source name %q", src.Name)
		names[src.Name] = struct{}{}
		require.NotEmpty(t, src.URL)
		require.Equal(t, crawler.SourceHTML, src.Type)
	}
}

func TestByCategory(t *testing.T) {
	t.Parallel()

	regs := ByCategory(CategoryRegulators)
	require.Len(t, regs, 3)
	require.Equal(t, "RBI Notifications", regs[0].Name)
	require.NotEmpty(t, regs[0].RSS)

	unknown := ByCategory("karnataka")
	require.NotNil(t, unknown)
	require.Empty(t, unknown)
}

func TestByCategoryReturnsCopy(t *testing.T) {
	t.Parallel()

	r := Default()
	got := r.ByCategory(CategoryMaharashtra)
	got[0].Name = "mutated"
	require.Equal(t, "Maharashtra GST Notifications", r.ByCategory(CategoryMaharashtra)[0].Name)
}

func TestByNamesKeepsDeclarationOrder(t *testing.T) {
	t.Parallel()

	got := Default().ByNames([]string{"SEBI Circulars", "Income Tax Notifications", "missing"})
	require.Len(t, got, 2)
	require.Equal(t, "Income Tax Notifications", got[0].Name)
	require.Equal(t, "SEBI Circulars", got[1].Name)

	priority := Default().ByNames(PrioritySources)
	require.Len(t, priority, len(PrioritySources))
}

func TestSelect(t *testing.T) {
	t.Parallel()

	r := New(
		crawler.DataSource{Name: "a", Category: "x"},
		crawler.DataSource{Name: "b", Category: "y"},
		crawler.DataSource{Name: "c", Category: "x"},
		crawler.DataSource{Name: "d", Category: "z"},
	)
	require.Equal(t, []string{"x", "y", "z"}, r.Categories())
	require.Equal(t, "a", r.All()[0].Name)
	require.Equal(t, "c", r.All()[1].Name)

	names := func(sources []crawler.DataSource) []string {
		out := make([]string, 0, len(sources))
		for _, src := range sources {
			out = append(out, src.Name)
		}
		return out
	}

	tests := []struct {
		name       string
		categories []string
		names      []string
		want       []string
	}{
		{name: "no filter", want: []string{"a", "c", "b", "d"}},
		{name: "category only", categories: []string{"y"}, want: []string{"b"}},
		{name: "names only", names: []string{"d", "a"}, want: []string{"a", "d"}},
		{name: "union of both", categories: []string{"y"}, names: []string{"c"}, want: []string{"c", "b"}},
		{name: "overlap listed once", categories: []string{"x"}, names: []string{"a", "c"}, want: []string{"a", "c"}},
		{name: "categories in catalog order", categories: []string{"z", "x"}, want: []string{"a", "c", "d"}},
		{name: "repeated filters", categories: []string{"y", "y"}, names: []string{"b"}, want: []string{"b"}},
		{name: "nothing matches", categories: []string{"karnataka"}, names: []string{"missing"}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, names(r.Select(tt.categories, tt.names)))
		})
	}
}
