package scenario

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/elektrokombinacija/magcubes/internal/algo"
)

// Result stores the outcome of one planner run.
type Result struct {
	RunID       string         `json:"run_id"`
	Timestamp   string         `json:"timestamp"`
	GoVersion   string         `json:"go_version"`
	OS          string         `json:"os"`
	Arch        string         `json:"arch"`
	Instance    string         `json:"instance"`
	Planner     string         `json:"planner"`
	Params      GenParams      `json:"params"`
	Success     bool           `json:"success"`
	State       string         `json:"state"`
	Reason      string         `json:"reason,omitempty"`
	ElapsedMs   float64        `json:"elapsed_ms"`
	Cost        float64        `json:"cost"`
	Connections int            `json:"connections"`
	Motions     int            `json:"motions"`
	Configs     int            `json:"configs_visited"`
	NLocal      int            `json:"nlocal"`
	TCSANodes   int            `json:"tcsa_nodes"`
	States      map[string]int `json:"states,omitempty"`
}

// NewResult summarizes p for the instance name and params.
func NewResult(instance, planner string, params GenParams, p *algo.GlobalPlan) Result {
	r := Result{
		RunID:       uuid.NewString(),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		GoVersion:   runtime.Version(),
		OS:          runtime.GOOS,
		Arch:        runtime.GOARCH,
		Instance:    instance,
		Planner:     planner,
		Params:      params,
		Success:     p.State == algo.Success,
		State:       p.State.String(),
		Reason:      p.Reason,
		ElapsedMs:   float64(p.Elapsed.Microseconds()) / 1000,
		Connections: len(p.Actions),
		Motions:     len(p.Motions()),
		Configs:     p.ConfigsVisited,
		NLocal:      p.LocalCalls,
		TCSANodes:   p.TCSANodes,
	}
	if r.Success {
		r.Cost = p.Cost()
	}
	if len(p.States) > 0 {
		r.States = make(map[string]int, len(p.States))
		for s, n := range p.States {
			r.States[s.String()] = n
		}
	}
	return r
}

// SaveResults writes results as indented JSON.
func SaveResults(path string, results []Result) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

var csvHeader = []string{
	"timestamp", "go_version", "os", "arch",
	"instance", "planner", "shape", "tiles", "leftover", "variant", "seed",
	"success", "state", "elapsed_ms", "cost", "connections", "motions",
	"configs_visited", "nlocal", "tcsa_nodes", "run_id", "states",
}

// WriteCSV writes one header row and one row per result. The state
// histogram is flattened to NAME=count pairs in name order.
func WriteCSV(w io.Writer, results []Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			r.Timestamp, r.GoVersion, r.OS, r.Arch,
			r.Instance, r.Planner, string(r.Params.Shape),
			strconv.Itoa(r.Params.Tiles), strconv.Itoa(r.Params.Leftover),
			string(r.Params.Variant), strconv.FormatInt(r.Params.Seed, 10),
			strconv.FormatBool(r.Success), r.State,
			fmt.Sprintf("%.2f", r.ElapsedMs), fmt.Sprintf("%.4f", r.Cost),
			strconv.Itoa(r.Connections), strconv.Itoa(r.Motions),
			strconv.Itoa(r.Configs), strconv.Itoa(r.NLocal), strconv.Itoa(r.TCSANodes),
			r.RunID, histogram(r.States),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes results to a CSV file.
func SaveCSV(path string, results []Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, results); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func histogram(m map[string]int) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := ""
	for i, k := range keys {
		if i > 0 {
			out += " "
		}
		out += k + "=" + strconv.Itoa(m[k])
	}
	return out
}
