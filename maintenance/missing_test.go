package maintenance

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

func TestMediaRefs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "img tag",
			in:   `<img src="pic.png">`,
			want: []string{"pic.png"},
		},
		{
			name: "sound token",
			in:   "hear [sound:audio.mp3] now",
			want: []string{"audio.mp3"},
		},
		{
			name: "path prefix reduced to base name",
			in:   `<img src="media/sub/pic.jpg">`,
			want: []string{"pic.jpg"},
		},
		{
			name: "mixed extensions",
			in:   "a.png b.gif c.svg",
			want: []string{"a.png", "b.gif", "c.svg"},
		},
		{
			name: "stacked extensions match twice",
			in:   "x.png.jpg",
			want: []string{"x.png", "x.png.jpg"},
		},
		{
			name: "no media",
			in:   "nothing to see",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MediaRefs(tt.in)
			sort.Strings(got)
			if len(got) != len(tt.want) {
				t.Fatalf("MediaRefs() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("MediaRefs() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestExportMissingMedia(t *testing.T) {
	col, db := newTestCollection(t)
	insertNotetype(t, db, 1, "Basic", "Front", "Back")
	insertNote(t, db, 1, 1, []string{
		`<img src="have.png"> and <img src="missing1.jpg">`,
		"see media/sub/missing2.mp3",
	}, "")
	insertNote(t, db, 2, 1, []string{"[sound:have2.mp3]", ""}, "")

	mediaDir := t.TempDir()
	for _, name := range []string{"have.png", "have2.mp3", "extra.gif"} {
		if err := os.WriteFile(filepath.Join(mediaDir, name), nil, 0o600); err != nil {
			t.Fatalf("seed media file %q: %v", name, err)
		}
	}

	reportsDir := t.TempDir()
	backupsDir := t.TempDir()
	r := &Runner{
		Col:      col,
		MediaDir: mediaDir,
		Reports:  ReportWriter{ReportsDir: reportsDir, BackupsDir: backupsDir},
	}

	res, err := r.ExportMissingMedia(context.Background())
	if err != nil {
		t.Fatalf("ExportMissingMedia() error = %v", err)
	}

	if res.Referenced != 4 {
		t.Errorf("Referenced = %d, want 4", res.Referenced)
	}
	want := []string{"missing1.jpg", "missing2.mp3"}
	if len(res.Missing) != len(want) {
		t.Fatalf("Missing = %v, want %v", res.Missing, want)
	}
	for i := range want {
		if res.Missing[i] != want[i] {
			t.Fatalf("Missing = %v, want %v", res.Missing, want)
		}
	}

	if got := filepath.Base(res.ReportPath); got != "missing_media.txt" {
		t.Errorf("report name = %q, want missing_media.txt", got)
	}
	data, err := os.ReadFile(res.ReportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if got := string(data); got != "missing1.jpg\nmissing2.mp3\n" {
		t.Errorf("report content = %q", got)
	}

	backup, err := os.ReadFile(filepath.Join(backupsDir, "missing_media.txt"))
	if err != nil {
		t.Fatalf("read backup copy: %v", err)
	}
	if !strings.Contains(string(backup), "missing1.jpg") {
		t.Errorf("backup copy content = %q, want the missing list", backup)
	}
}

func TestExportMissingMediaNothingMissing(t *testing.T) {
	col, db := newTestCollection(t)
	insertNotetype(t, db, 1, "Basic", "Front")
	insertNote(t, db, 1, 1, []string{`<img src="have.png">`}, "")

	mediaDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(mediaDir, "have.png"), nil, 0o600); err != nil {
		t.Fatalf("seed media file: %v", err)
	}

	r := &Runner{
		Col:      col,
		MediaDir: mediaDir,
		Reports:  ReportWriter{ReportsDir: t.TempDir()},
	}
	res, err := r.ExportMissingMedia(context.Background())
	if err != nil {
		t.Fatalf("ExportMissingMedia() error = %v", err)
	}
	if len(res.Missing) != 0 {
		t.Errorf("Missing = %v, want empty", res.Missing)
	}

	data, err := os.ReadFile(res.ReportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("report content = %q, want empty file", data)
	}
}
