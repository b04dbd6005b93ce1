package cache

import "testing"

func TestTTLPolicy_Classify(t *testing.T) {
	p := DefaultTTLPolicy()

	tests := []struct {
		name   string
		filter Filter
		want   Priority
	}{
		{"unfiltered listing is hot", Filter{}, PriorityHot},
		{"campus listing is hot", Filter{Campus: "CSM"}, PriorityHot},
		{"letter listing is warm", Filter{Letter: "A"}, PriorityWarm},
		{"campus and letter is warm", Filter{Campus: "CSM", Letter: "A"}, PriorityWarm},
		{"search is cold", Filter{Search: "library"}, PriorityCold},
		{"search beats campus", Filter{Campus: "CSM", Search: "library"}, PriorityCold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Classify(tt.filter); got != tt.want {
				t.Errorf("Classify(%+v) = %v, want %v", tt.filter, got, tt.want)
			}
		})
	}
}

func TestTTLPolicy_Cacheable(t *testing.T) {
	p := DefaultTTLPolicy()

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"no search", Filter{Campus: "CSM"}, true},
		{"one char search", Filter{Search: "l"}, false},
		{"two char search", Filter{Search: "li"}, false},
		{"three char search", Filter{Search: "lib"}, true},
		{"whitespace only search", Filter{Search: "   "}, true},
		{"punctuation-only short search", Filter{Search: "!!"}, false},
		{"short search padded with spaces", Filter{Search: " li "}, false},
		{"punctuation search at minimum length", Filter{Search: "c++"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Cacheable(tt.filter); got != tt.want {
				t.Errorf("Cacheable(%+v) = %v, want %v", tt.filter, got, tt.want)
			}
		})
	}
}

func TestTTLPolicy_TTLs(t *testing.T) {
	p := DefaultTTLPolicy()

	if p.TTLs(PriorityHot) != p.Hot {
		t.Errorf("TTLs(hot) = %+v, want %+v", p.TTLs(PriorityHot), p.Hot)
	}
	if p.TTLs(PriorityCold) != p.Cold {
		t.Errorf("TTLs(cold) = %+v, want %+v", p.TTLs(PriorityCold), p.Cold)
	}
	if p.TTLs(Priority("unknown")) != p.Warm {
		t.Errorf("TTLs(unknown) = %+v, want warm %+v", p.TTLs(Priority("unknown")), p.Warm)
	}
	if p.Hot.Remote <= p.Cold.Remote {
		t.Errorf("hot remote TTL %v should exceed cold %v", p.Hot.Remote, p.Cold.Remote)
	}
}
