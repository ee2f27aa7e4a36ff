// Package instance reads problem instances and writes plans in the plain
// text contest format and in JSON.
package instance

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/okian/staffing/internal/domain/model"
)

const (
	maxLineLength = 1 << 20
	// maxPrealloc bounds capacity taken from header counts; longer inputs
	// grow by append.
	maxPrealloc = 1 << 16
)

func capHint(n int) int { return min(n, maxPrealloc) }

type lineReader struct {
	sc   *bufio.Scanner
	line int
}

func newLineReader(r io.Reader) *lineReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	return &lineReader{sc: sc}
}

// next returns the fields of the next non-empty line.
func (lr *lineReader) next(want int) ([]string, error) {
	for lr.sc.Scan() {
		lr.line++
		fields := strings.Fields(lr.sc.Text())
		if len(fields) == 0 {
			continue
		}
		if want > 0 && len(fields) != want {
			return nil, fmt.Errorf("%w: line %d: expected %d fields, got %d", ErrMalformedInput, lr.line, want, len(fields))
		}
		return fields, nil
	}
	if err := lr.sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedInput, lr.line, err)
	}
	return nil, fmt.Errorf("%w: unexpected end of input after line %d", ErrMalformedInput, lr.line)
}

func (lr *lineReader) ints(fields []string) ([]int, error) {
	out := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %q is not an integer", ErrMalformedInput, lr.line, f)
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: line %d: negative value %d", ErrMalformedInput, lr.line, n)
		}
		out[i] = n
	}
	return out, nil
}

func (lr *lineReader) skill() (string, int, error) {
	f, err := lr.next(2)
	if err != nil {
		return "", 0, err
	}
	n, err := lr.ints(f[1:])
	if err != nil {
		return "", 0, err
	}
	if n[0] > model.MaxLevel {
		return "", 0, fmt.Errorf("%w: line %d: level %d above %d", ErrMalformedInput, lr.line, n[0], model.MaxLevel)
	}
	return f[0], n[0], nil
}

// ReadText parses the contest text format:
//
//	C P
//	name N            (C times, each followed by N "skill level" lines)
//	name D S B R      (P times, each followed by R "skill level" lines)
func ReadText(r io.Reader) (*model.Instance, error) {
	lr := newLineReader(r)
	head, err := lr.next(2)
	if err != nil {
		return nil, err
	}
	counts, err := lr.ints(head)
	if err != nil {
		return nil, err
	}

	in := &model.Instance{
		Contributors: make([]model.Contributor, 0, capHint(counts[0])),
		Projects:     make([]model.Project, 0, capHint(counts[1])),
	}
	for i := 0; i < counts[0]; i++ {
		f, err := lr.next(2)
		if err != nil {
			return nil, err
		}
		n, err := lr.ints(f[1:])
		if err != nil {
			return nil, err
		}
		c := model.Contributor{Name: f[0], Skills: make(map[string]int, capHint(n[0]))}
		for j := 0; j < n[0]; j++ {
			s, l, err := lr.skill()
			if err != nil {
				return nil, err
			}
			c.Skills[s] = l
		}
		in.Contributors = append(in.Contributors, c)
	}
	for i := 0; i < counts[1]; i++ {
		f, err := lr.next(5)
		if err != nil {
			return nil, err
		}
		n, err := lr.ints(f[1:])
		if err != nil {
			return nil, err
		}
		p := model.Project{Name: f[0], Duration: n[0], Score: n[1], BestBefore: n[2], Roles: make([]model.Role, 0, capHint(n[3]))}
		for j := 0; j < n[3]; j++ {
			s, l, err := lr.skill()
			if err != nil {
				return nil, err
			}
			p.Roles = append(p.Roles, model.Role{Skill: s, Level: l})
		}
		in.Projects = append(in.Projects, p)
	}
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	return in, nil
}

// WriteText writes a plan: the allocation count, then per allocation the
// project name and the contributor names in role order.
func WriteText(w io.Writer, plan []model.NamedAllocation) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, len(plan))
	for _, a := range plan {
		fmt.Fprintln(bw, a.Project)
		fmt.Fprintln(bw, strings.Join(a.Contributors, " "))
	}
	return bw.Flush()
}

// WriteInstance writes in using the text instance format. Skills are written
// in name order so output is stable.
func WriteInstance(w io.Writer, in *model.Instance) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, len(in.Contributors), len(in.Projects))
	for _, c := range in.Contributors {
		skills := make([]string, 0, len(c.Skills))
		for s := range c.Skills {
			skills = append(skills, s)
		}
		sort.Strings(skills)
		fmt.Fprintln(bw, c.Name, len(skills))
		for _, s := range skills {
			fmt.Fprintln(bw, s, c.Skills[s])
		}
	}
	for _, p := range in.Projects {
		fmt.Fprintln(bw, p.Name, p.Duration, p.Score, p.BestBefore, len(p.Roles))
		for _, r := range p.Roles {
			fmt.Fprintln(bw, r.Skill, r.Level)
		}
	}
	return bw.Flush()
}

// ReadPlan parses a plan written by WriteText.
func ReadPlan(r io.Reader) ([]model.NamedAllocation, error) {
	lr := newLineReader(r)
	head, err := lr.next(1)
	if err != nil {
		return nil, err
	}
	n, err := lr.ints(head)
	if err != nil {
		return nil, err
	}
	plan := make([]model.NamedAllocation, 0, capHint(n[0]))
	for i := 0; i < n[0]; i++ {
		name, err := lr.next(1)
		if err != nil {
			return nil, err
		}
		names, err := lr.next(0)
		if err != nil {
			return nil, err
		}
		plan = append(plan, model.NamedAllocation{Project: name[0], Contributors: names})
	}
	return plan, nil
}
