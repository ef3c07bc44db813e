package nowarn

import "testing"

func TestUnionNodeWarn(t *testing.T) {
	path := NodeWarn{
		ProjectWide: NewCodeSet("NU1701"),
	}
	node := NodeWarn{
		ProjectWide:     NewCodeSet("NU1901"),
		PackageSpecific: PackageSpecific{"pkg.a": NewCodeSet("NU1902")},
	}

	got := unionNodeWarn(path, node)

	wantWide := NewCodeSet("NU1701", "NU1901")
	if !got.ProjectWide.Equal(wantWide) {
		t.Errorf("ProjectWide = %v, want %v", got.ProjectWide, wantWide)
	}
	if !got.PackageSpecific.Get("PKG.A").Equal(NewCodeSet("NU1902")) {
		t.Errorf("PackageSpecific[pkg.a] = %v, want NU1902", got.PackageSpecific.Get("pkg.a"))
	}
}

func TestIntersectNodeWarn_MissingKeyTreatedAsUnconstrained(t *testing.T) {
	a := NodeWarn{
		PackageSpecific: PackageSpecific{"pkg.a": NewCodeSet("NU1701")},
	}
	b := NodeWarn{
		PackageSpecific: PackageSpecific{"pkg.b": NewCodeSet("NU1901")},
	}

	got := intersectNodeWarn(a, b)

	if !got.PackageSpecific.Get("pkg.a").Equal(NewCodeSet("NU1701")) {
		t.Errorf("pkg.a should carry through from a untouched, got %v", got.PackageSpecific.Get("pkg.a"))
	}
	if !got.PackageSpecific.Get("pkg.b").Equal(NewCodeSet("NU1901")) {
		t.Errorf("pkg.b should carry through from b untouched, got %v", got.PackageSpecific.Get("pkg.b"))
	}
}

func TestIntersectNodeWarn_SharedKeyIntersects(t *testing.T) {
	a := NodeWarn{
		ProjectWide:     NewCodeSet("NU1701", "NU1901"),
		PackageSpecific: PackageSpecific{"pkg.a": NewCodeSet("NU1902", "NU1903")},
	}
	b := NodeWarn{
		ProjectWide:     NewCodeSet("NU1901"),
		PackageSpecific: PackageSpecific{"pkg.a": NewCodeSet("NU1902")},
	}

	got := intersectNodeWarn(a, b)

	if !got.ProjectWide.Equal(NewCodeSet("NU1901")) {
		t.Errorf("ProjectWide = %v, want {NU1901}", got.ProjectWide)
	}
	if !got.PackageSpecific.Get("pkg.a").Equal(NewCodeSet("NU1902")) {
		t.Errorf("pkg.a = %v, want {NU1902}", got.PackageSpecific.Get("pkg.a"))
	}
}

func TestIsSubsetNodeWarn(t *testing.T) {
	small := NodeWarn{ProjectWide: NewCodeSet("NU1701")}
	big := NodeWarn{
		ProjectWide:     NewCodeSet("NU1701", "NU1901"),
		PackageSpecific: PackageSpecific{"pkg.a": NewCodeSet("NU1902")},
	}
	empty := NodeWarn{}

	if !isSubsetNodeWarn(small, big) {
		t.Errorf("expected small to be a subset of big")
	}
	if isSubsetNodeWarn(big, small) {
		t.Errorf("did not expect big to be a subset of small")
	}
	if !isSubsetNodeWarn(empty, small) {
		t.Errorf("expected empty NodeWarn to be a subset of anything")
	}
}

func TestNodeWarn_IsEmpty(t *testing.T) {
	if !(NodeWarn{}).IsEmpty() {
		t.Errorf("zero-value NodeWarn should be empty")
	}
	if (NodeWarn{ProjectWide: NewCodeSet("NU1701")}).IsEmpty() {
		t.Errorf("NodeWarn with project-wide codes should not be empty")
	}
	nonEmptyPkg := NodeWarn{PackageSpecific: PackageSpecific{"pkg.a": NewCodeSet("NU1701")}}
	if nonEmptyPkg.IsEmpty() {
		t.Errorf("NodeWarn with package-specific codes should not be empty")
	}
}
