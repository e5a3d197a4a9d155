package maven

import "testing"

func TestParse(t *testing.T) {
	cases := []struct {
		coord string
		want  Artifact
	}{
		{
			coord: "net.fabricmc:fabric-loader:0.15.11",
			want:  Artifact{Group: "net.fabricmc", Name: "fabric-loader", Version: "0.15.11", Ext: "jar"},
		},
		{
			coord: "org.lwjgl:lwjgl:3.3.1:natives-linux",
			want:  Artifact{Group: "org.lwjgl", Name: "lwjgl", Version: "3.3.1", Classifier: "natives-linux", Ext: "jar"},
		},
		{
			coord: "com.example:thing:1.0@zip",
			want:  Artifact{Group: "com.example", Name: "thing", Version: "1.0", Ext: "zip"},
		},
	}

	for _, c := range cases {
		got, err := Parse(c.coord)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", c.coord, err)
		}
		if got != c.want {
			t.Errorf("Parse(%q) = %+v, want %+v", c.coord, got, c.want)
		}
	}
}

func TestParse_InvalidCoordinate(t *testing.T) {
	if _, err := Parse("too-short"); err == nil {
		t.Error("expected error for coordinate with too few segments")
	}
}

func TestArtifact_Key(t *testing.T) {
	a, err := Parse("net.fabricmc:fabric-loader:0.15.11")
	if err != nil {
		t.Fatal(err)
	}
	want := Key{Group: "net.fabricmc", Name: "fabric-loader"}
	if a.Key() != want {
		t.Errorf("Key() = %+v, want %+v", a.Key(), want)
	}
}

func TestArtifact_Path(t *testing.T) {
	a, err := Parse("org.lwjgl:lwjgl:3.3.1:natives-linux")
	if err != nil {
		t.Fatal(err)
	}
	want := "org/lwjgl/lwjgl/3.3.1/lwjgl-3.3.1-natives-linux.jar"
	if got := a.Path(); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestArtifact_URL(t *testing.T) {
	a, err := Parse("net.fabricmc:fabric-loader:0.15.11")
	if err != nil {
		t.Fatal(err)
	}
	want := "https://maven.fabricmc.net/net/fabricmc/fabric-loader/0.15.11/fabric-loader-0.15.11.jar"
	if got := a.URL("https://maven.fabricmc.net/"); got != want {
		t.Errorf("URL() = %q, want %q", got, want)
	}
}

func TestArtifact_String(t *testing.T) {
	a, err := Parse("org.lwjgl:lwjgl:3.3.1:natives-linux")
	if err != nil {
		t.Fatal(err)
	}
	want := "org.lwjgl:lwjgl:3.3.1:natives-linux"
	if got := a.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
