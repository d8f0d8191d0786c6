package stat

// Op is the kind of write a Deriver asks the Block to make.
type Op int

const (
	// WritePerm writes Value to the perm side, creating the stat if needed.
	WritePerm Op = iota
	// WriteBoth writes Value to perm and temp.
	WriteBoth
	// ClearType removes every stat under Key.Category and Key.Type; Key.Name is ignored.
	ClearType
)

// Change is one write produced by a Deriver.
type Change struct {
	Op    Op
	Key   Key
	Value Value
}

// Reader is the read-only view of a Block handed to derivers.
type Reader interface {
	Get(k Key, temp bool) (Value, bool)
	Lookup(k Key) (Entry, bool)
	Entries(c Category, t string) map[string]Entry
	KeysNamed(name string) []Key
}

// Deriver recomputes a cached stat from its inputs.
//
// Derive must be a pure function of the Reader's contents.
type Deriver interface {
	// Name identifies the deriver in logs.
	Name() string
	// Triggered reports whether a change at k affects the derived value.
	Triggered(k Key) bool
	// Derive returns the writes that bring the derived stats up to date.
	Derive(r Reader) []Change
}

// Derived adapts a pair of functions to the Deriver interface.
type Derived struct {
	Label   string
	Inputs  func(Key) bool
	Compute func(Reader) []Change
}

// Name returns d.Label.
func (d Derived) Name() string { return d.Label }

// Triggered calls d.Inputs.
func (d Derived) Triggered(k Key) bool { return d.Inputs(k) }

// Derive calls d.Compute.
func (d Derived) Derive(r Reader) []Change { return d.Compute(r) }

// DefaultDerivers returns the built-in derivers in the order they must run:
// path virtues first, then Willpower and Road which read them.
func DefaultDerivers() []Deriver {
	return []Deriver{VirtuesForPath(), Willpower(), Road()}
}

func isVirtueOrPath(k Key) bool {
	return k.Category == Virtues || k == EnlightenmentKey
}

// hasVirtues gates Willpower and Road: a character without virtues keeps
// whatever values were set by hand.
func hasVirtues(r Reader) bool {
	return len(r.Entries(Virtues, "moral")) > 0
}

// currentPath returns the character's path of enlightenment, DefaultPath when unset.
func currentPath(r Reader) string {
	v, _ := r.Get(EnlightenmentKey, false)
	if v.IsZero() {
		return DefaultPath
	}
	return v.String()
}

// VirtuesForPath replaces the moral virtues with the current path's two
// virtues plus Courage, each at 1, whenever Enlightenment changes to a path
// whose virtue set differs from the one stored. An unknown path leaves the
// virtues alone.
func VirtuesForPath() Deriver {
	return Derived{
		Label:  "virtues-for-path",
		Inputs: func(k Key) bool { return k == EnlightenmentKey },
		Compute: func(r Reader) []Change {
			if _, ok := r.Lookup(EnlightenmentKey); !ok {
				return nil
			}
			_, pv, ok := PathVirtues(currentPath(r))
			if !ok {
				return nil
			}
			want := []string{pv[0], pv[1], Courage}
			have := r.Entries(Virtues, "moral")
			if len(have) == len(want) {
				same := true
				for _, name := range want {
					if _, ok := have[name]; !ok {
						same = false
						break
					}
				}
				if same {
					return nil
				}
			}
			changes := []Change{{Op: ClearType, Key: Key{Virtues, "moral", ""}}}
			for _, name := range want {
				changes = append(changes, Change{Op: WritePerm, Key: Key{Virtues, "moral", name}, Value: Int(1)})
			}
			return changes
		},
	}
}

// ComputeWillpower returns Courage's perm when Courage is set, else the
// highest perm among the stored virtues, else 1.
func ComputeWillpower(r Reader) int {
	if e, ok := r.Lookup(Key{Virtues, "moral", Courage}); ok {
		n, _ := e.Perm.Int()
		return n
	}
	virtues := r.Entries(Virtues, "moral")
	if len(virtues) == 0 {
		return 1
	}
	best := 0
	for _, e := range virtues {
		if n, _ := e.Perm.Int(); n > best {
			best = n
		}
	}
	return best
}

// Willpower keeps pools/dual/Willpower equal to ComputeWillpower, writing
// both sides. It does nothing while no virtues are stored.
func Willpower() Deriver {
	return Derived{
		Label:  "willpower",
		Inputs: isVirtueOrPath,
		Compute: func(r Reader) []Change {
			if !hasVirtues(r) {
				return nil
			}
			return []Change{{Op: WriteBoth, Key: WillpowerKey, Value: Int(ComputeWillpower(r))}}
		},
	}
}

// ComputeRoad returns the sum of the current path's two virtue perms, or 0
// when the path is unknown. An unset Enlightenment counts as DefaultPath.
func ComputeRoad(r Reader) int {
	_, pv, ok := PathVirtues(currentPath(r))
	if !ok {
		return 0
	}
	total := 0
	for _, name := range pv {
		if e, ok := r.Lookup(Key{Virtues, "moral", name}); ok {
			n, _ := e.Perm.Int()
			total += n
		}
	}
	return total
}

// Road keeps the perm side of pools/moral/Road equal to ComputeRoad once
// virtues are stored.
func Road() Deriver {
	return Derived{
		Label:  "road",
		Inputs: isVirtueOrPath,
		Compute: func(r Reader) []Change {
			if !hasVirtues(r) {
				return nil
			}
			return []Change{{Op: WritePerm, Key: RoadKey, Value: Int(ComputeRoad(r))}}
		},
	}
}
