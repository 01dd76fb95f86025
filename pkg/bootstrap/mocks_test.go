package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dockstrap/dockstrap/pkg/config"
	"github.com/dockstrap/dockstrap/pkg/runner"
	"github.com/dockstrap/dockstrap/pkg/stores"
)

// mockRunner scripts command outcomes by prefix match on the rendered
// command line and records every invocation.
type mockRunner struct {
	mu        sync.Mutex
	responses map[string]*runner.Result
	sequences map[string][]*runner.Result
	errors    map[string]error
	calls     []string
	files     map[string][]byte
}

func newMockRunner() *mockRunner {
	return &mockRunner{
		responses: make(map[string]*runner.Result),
		sequences: make(map[string][]*runner.Result),
		errors:    make(map[string]error),
		files:     make(map[string][]byte),
	}
}

// respond scripts a result for any command whose rendered line starts
// with prefix.
func (m *mockRunner) respond(prefix string, result *runner.Result) {
	m.responses[prefix] = result
}

// respondSeq scripts consecutive results for a prefix; once the
// sequence is drained the static response map takes over.
func (m *mockRunner) respondSeq(prefix string, results ...*runner.Result) {
	m.sequences[prefix] = results
}

func (m *mockRunner) fail(prefix string, err error) {
	m.errors[prefix] = err
}

func (m *mockRunner) Run(_ context.Context, cmd runner.Command) (*runner.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	line := strings.Join(append([]string{cmd.Name}, cmd.Args...), " ")
	m.calls = append(m.calls, line)

	// Longest matching prefix wins, so "id -un" can be scripted
	// independently of "id -u".
	var bestSeq string
	bestSeqLen := -1
	for prefix, queue := range m.sequences {
		if len(queue) > 0 && strings.HasPrefix(line, prefix) && len(prefix) > bestSeqLen {
			bestSeq, bestSeqLen = prefix, len(prefix)
		}
	}
	if bestSeqLen >= 0 {
		queue := m.sequences[bestSeq]
		result := queue[0]
		m.sequences[bestSeq] = queue[1:]
		return result, nil
	}

	var bestErr error
	bestErrLen := -1
	for prefix, err := range m.errors {
		if strings.HasPrefix(line, prefix) && len(prefix) > bestErrLen {
			bestErr, bestErrLen = err, len(prefix)
		}
	}
	var bestResult *runner.Result
	bestLen := -1
	for prefix, result := range m.responses {
		if strings.HasPrefix(line, prefix) && len(prefix) > bestLen {
			bestResult, bestLen = result, len(prefix)
		}
	}
	if bestErrLen > bestLen {
		return nil, bestErr
	}
	if bestResult != nil {
		return bestResult, nil
	}
	// Unscripted commands succeed with empty output.
	return &runner.Result{ExitCode: 0}, nil
}

func (m *mockRunner) WriteFile(_ context.Context, path string, content []byte, _ uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = content
	return nil
}

func (m *mockRunner) called(prefix string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, line := range m.calls {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

func (m *mockRunner) callCount(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, line := range m.calls {
		if strings.HasPrefix(line, prefix) {
			count++
		}
	}
	return count
}

// scriptedPrompter replays a fixed sequence of answers.
type scriptedPrompter struct {
	answers []bool
	asked   []string
}

func (p *scriptedPrompter) next(question string) (bool, error) {
	p.asked = append(p.asked, question)
	if len(p.answers) == 0 {
		return false, fmt.Errorf("unexpected prompt: %s", question)
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

func (p *scriptedPrompter) Confirm(question string, _ bool) (bool, error) {
	return p.next(question)
}

func (p *scriptedPrompter) ConfirmLoop(question string) (bool, error) {
	return p.next(question)
}

// memoryJournal records journal calls in memory.
type memoryJournal struct {
	runs     []*stores.Run
	stages   []*stores.StageRecord
	statuses map[string]stores.RunStatus
}

func newMemoryJournal() *memoryJournal {
	return &memoryJournal{statuses: make(map[string]stores.RunStatus)}
}

func (j *memoryJournal) Init(context.Context) error { return nil }
func (j *memoryJournal) Close() error               { return nil }

func (j *memoryJournal) BeginRun(_ context.Context, run *stores.Run) error {
	j.runs = append(j.runs, run)
	return nil
}

func (j *memoryJournal) FinishRun(_ context.Context, runID string, status stores.RunStatus, _ error) error {
	j.statuses[runID] = status
	return nil
}

func (j *memoryJournal) RecordStage(_ context.Context, record *stores.StageRecord) error {
	j.stages = append(j.stages, record)
	return nil
}

func (j *memoryJournal) ListRuns(context.Context, int) ([]*stores.Run, error) {
	return j.runs, nil
}

func (j *memoryJournal) StagesForRun(_ context.Context, runID string) ([]*stores.StageRecord, error) {
	var out []*stores.StageRecord
	for _, record := range j.stages {
		if record.RunID == runID {
			out = append(out, record)
		}
	}
	return out, nil
}

// testEnv wires an Env with a mock runner and scripted prompter.
func testEnv(r *mockRunner, p *scriptedPrompter) *Env {
	env := NewEnv(config.Default(), r, p, zerolog.Nop(), nil)
	// Instantaneous service checks keep tests fast.
	env.Cfg.Service.WaitTimeout = 0
	return env
}

// ubuntuOSRelease is a realistic os-release payload for scripting the
// validation stage.
const ubuntuOSRelease = `PRETTY_NAME="Ubuntu 24.04.1 LTS"
NAME="Ubuntu"
VERSION_ID="24.04"
VERSION="24.04.1 LTS (Noble Numbat)"
VERSION_CODENAME=noble
ID=ubuntu
ID_LIKE=debian
`

// scriptValidationPass scripts the commands the validation stage runs
// for a supported non-root host with sudo access.
func scriptValidationPass(r *mockRunner) {
	r.respond("cat /etc/os-release", &runner.Result{ExitCode: 0, Stdout: ubuntuOSRelease})
	r.respond("dpkg --print-architecture", &runner.Result{ExitCode: 0, Stdout: "amd64\n"})
	r.respond("uname -r", &runner.Result{ExitCode: 0, Stdout: "6.8.0-45-generic\n"})
	r.respond("hostname", &runner.Result{ExitCode: 0, Stdout: "testhost\n"})
	r.respond("id -u", &runner.Result{ExitCode: 0, Stdout: "1000\n"})
	r.respond("sudo -n true", &runner.Result{ExitCode: 0})
}
