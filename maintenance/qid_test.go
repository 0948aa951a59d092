package maintenance

import "testing"

func TestBuildQIDQuery(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "two ids",
			in:   "see 123 and 456",
			want: "qid:123 OR qid:456",
		},
		{
			name: "repeats collapse keeping first",
			in:   "123 123 456 123",
			want: "qid:123 OR qid:456",
		},
		{
			name: "order preserved",
			in:   "99 1 50",
			want: "qid:99 OR qid:1 OR qid:50",
		},
		{
			name: "ids embedded in words",
			in:   "Q123ABC456",
			want: "qid:123 OR qid:456",
		},
		{
			name: "single id",
			in:   "7",
			want: "qid:7",
		},
		{
			name: "leading zeros kept verbatim",
			in:   "007",
			want: "qid:007",
		},
		{
			name: "no digits",
			in:   "nothing numeric here",
			want: "",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildQIDQuery(tt.in); got != tt.want {
				t.Errorf("BuildQIDQuery(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
