// Package script loads scripted exercise input from files.
package script

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/verte-zerg/rehab/internal/engine"
)

// Step holds one input for a number of frames.
type Step struct {
	Input  engine.Input
	Frames int
}

// Script replays steps frame by frame. After the last step it reports no
// input, or starts over when Loop is set.
type Script struct {
	Steps []Step
	Loop  bool
	total int
}

// New returns a script over steps.
func New(steps []Step) *Script {
	s := &Script{Steps: steps}
	for _, st := range steps {
		s.total += st.Frames
	}
	return s
}

// Frames returns the number of frames the script covers.
func (s *Script) Frames() int {
	return s.total
}

// Sample returns the input for a 1-based frame number.
func (s *Script) Sample(frame uint64) engine.Input {
	if s.total == 0 || frame == 0 {
		return engine.Input{}
	}
	idx := int(frame - 1)
	if idx >= s.total {
		if !s.Loop {
			return engine.Input{}
		}
		idx %= s.total
	}
	for _, st := range s.Steps {
		if idx < st.Frames {
			return st.Input
		}
		idx -= st.Frames
	}
	return engine.Input{}
}

// Load reads a script file.
func Load(path string) (*Script, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only script.
			_ = cerr
		}
	}()
	s, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse reads one step per line: a direction or command followed by an
// optional frame count. Blank lines and lines starting with # are skipped.
//
//	right 30
//	up-left 12
//	wait 60
//	pause
//	quit
func Parse(r io.Reader) (*Script, error) {
	var steps []Step
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) > 2 {
			return nil, fmt.Errorf("line %d: expected \"<direction> [frames]\", got %q", line, text)
		}
		step, err := parseStep(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		steps = append(steps, step)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("script is empty")
	}
	return New(steps), nil
}

func parseStep(fields []string) (Step, error) {
	word := strings.ToLower(fields[0])
	frames := 1
	if len(fields) == 2 {
		n, err := strconv.Atoi(fields[1])
		if err != nil || n <= 0 {
			return Step{}, fmt.Errorf("invalid frame count %q", fields[1])
		}
		frames = n
	}
	switch word {
	case "pause":
		return Step{Input: engine.Input{TogglePause: true}, Frames: frames}, nil
	case "quit":
		if len(fields) == 2 {
			return Step{}, fmt.Errorf("quit takes no frame count")
		}
		return Step{Input: engine.Input{Quit: true}, Frames: 1}, nil
	}
	intent, ok := ParseDirection(word)
	if !ok {
		return Step{}, fmt.Errorf("unknown direction %q", fields[0])
	}
	return Step{Input: engine.Input{Intent: intent}, Frames: frames}, nil
}
