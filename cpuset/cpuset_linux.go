//go:build linux
// +build linux

// File: cpuset/cpuset_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux cpuset filesystem mechanics: creates the arbiter's cpuset
// hierarchy under <cpusetRoot>/arbiter and moves thread IDs between
// cpusets by writing them into each cpuset's tasks file, the same
// ioutil.WriteFile(tasks, pid)-shaped idiom used by container runtimes
// for their cpuset cgroup subsystem.

package cpuset

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// linuxController implements Controller using the legacy (v1) cpuset
// cgroup filesystem.
type linuxController struct {
	cpusetRoot   string // e.g. /sys/fs/cgroup/cpuset
	arbiterRoot  string // cpusetRoot/arbiter
	managedCores []int
}

// NewController builds a Controller rooted at cpusetRoot/arbiter. An
// empty cpusetRoot defaults to DefaultRoot.
func NewController(cpusetRoot string) Controller {
	if cpusetRoot == "" {
		cpusetRoot = DefaultRoot
	}
	return &linuxController{
		cpusetRoot:  cpusetRoot,
		arbiterRoot: filepath.Join(cpusetRoot, "arbiter"),
	}
}

func ensureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

func (c *linuxController) corePath(core int) string {
	return filepath.Join(c.arbiterRoot, fmt.Sprintf("Core%d", core))
}

func (c *linuxController) unmanagedPath() string {
	return filepath.Join(c.arbiterRoot, UnmanagedName)
}

func writeCpusetFile(dir, name, value string) error {
	return os.WriteFile(filepath.Join(dir, name), []byte(value), 0644)
}

// createCpuset makes dir (if needed) and populates its cpus/mems files.
func createCpuset(dir, cores, mems string) error {
	if err := ensureDir(dir); err != nil {
		return fmt.Errorf("cpuset: mkdir %s: %w", dir, err)
	}
	if err := writeCpusetFile(dir, "cpuset.cpus", cores); err != nil {
		return fmt.Errorf("cpuset: write cpus for %s: %w", dir, err)
	}
	if err := writeCpusetFile(dir, "cpuset.mems", mems); err != nil {
		return fmt.Errorf("cpuset: write mems for %s: %w", dir, err)
	}
	return nil
}

func readMems(dir string) (string, error) {
	b, err := os.ReadFile(filepath.Join(dir, "cpuset.mems"))
	if err != nil {
		return "", err
	}
	mems := strings.TrimSpace(string(b))
	if mems == "" {
		mems = "0"
	}
	return mems, nil
}

// allCPUsExcept returns a cpuset.cpus-formatted list of every logical
// CPU on the host that is not in managed.
func allCPUsExcept(managed []int) string {
	total := runtime.NumCPU()
	excluded := make(map[int]bool, len(managed))
	for _, c := range managed {
		excluded[c] = true
	}
	ids := make([]string, 0, total)
	for i := 0; i < total; i++ {
		if !excluded[i] {
			ids = append(ids, strconv.Itoa(i))
		}
	}
	return strings.Join(ids, ",")
}

// readTasks parses a cpuset tasks file into a slice of thread IDs.
func readTasks(dir string) ([]int, error) {
	b, err := os.ReadFile(filepath.Join(dir, "tasks"))
	if err != nil {
		return nil, err
	}
	var tids []int
	for _, line := range strings.Split(strings.TrimSpace(string(b)), "\n") {
		if line == "" {
			continue
		}
		tid, err := strconv.Atoi(line)
		if err != nil {
			continue
		}
		tids = append(tids, tid)
	}
	return tids, nil
}

func writeTask(dir string, tid int) error {
	return os.WriteFile(filepath.Join(dir, "tasks"), []byte(strconv.Itoa(tid)), 0644)
}

// moveAllTasks relocates every task currently in fromDir into toDir.
// Individual failures (a task that exited mid-scan) are logged and
// skipped rather than aborting the whole migration.
func moveAllTasks(fromDir, toDir string) error {
	tids, err := readTasks(fromDir)
	if err != nil {
		return err
	}
	for _, tid := range tids {
		if err := writeTask(toDir, tid); err != nil {
			logrus.WithFields(logrus.Fields{"tid": tid, "from": fromDir, "to": toDir}).
				WithError(err).Warn("cpuset: failed to migrate stray task")
		}
	}
	return nil
}

// Setup implements Controller.
func (c *linuxController) Setup(managedCores []int) error {
	if err := ensureDir(c.arbiterRoot); err != nil {
		return fmt.Errorf("cpuset: ensure arbiter root: %w", err)
	}
	mems, err := readMems(c.cpusetRoot)
	if err != nil {
		return fmt.Errorf("cpuset: read root mems: %w", err)
	}
	c.managedCores = append([]int(nil), managedCores...)

	if err := c.removeStale(); err != nil {
		logrus.WithError(err).Warn("cpuset: failed to clean up cpusets from a prior run")
	}

	for _, core := range managedCores {
		if err := createCpuset(c.corePath(core), strconv.Itoa(core), mems); err != nil {
			return err
		}
	}
	if err := createCpuset(c.unmanagedPath(), allCPUsExcept(managedCores), mems); err != nil {
		return err
	}
	if err := moveAllTasks(c.cpusetRoot, c.unmanagedPath()); err != nil {
		return fmt.Errorf("cpuset: evacuate root tasks: %w", err)
	}
	return nil
}

// removeStale deletes cpusets left over from a previous run that no
// longer correspond to a currently-managed core. Non-empty cpusets are
// left alone.
func (c *linuxController) removeStale() error {
	entries, err := os.ReadDir(c.arbiterRoot)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	wanted := map[string]bool{UnmanagedName: true}
	for _, core := range c.managedCores {
		wanted[fmt.Sprintf("Core%d", core)] = true
	}
	for _, e := range entries {
		if !e.IsDir() || wanted[e.Name()] {
			continue
		}
		dir := filepath.Join(c.arbiterRoot, e.Name())
		tids, err := readTasks(dir)
		if err != nil || len(tids) > 0 {
			continue
		}
		if err := os.Remove(dir); err != nil {
			logrus.WithField("dir", dir).WithError(err).Warn("cpuset: could not remove stale cpuset")
		}
	}
	return nil
}

// MoveToCore implements Controller.
func (c *linuxController) MoveToCore(tid int, core int) error {
	return writeTask(c.corePath(core), tid)
}

// MoveToUnmanaged implements Controller.
func (c *linuxController) MoveToUnmanaged(tid int) error {
	return writeTask(c.unmanagedPath(), tid)
}

// Teardown implements Controller.
func (c *linuxController) Teardown() error {
	for _, core := range c.managedCores {
		dir := c.corePath(core)
		if err := moveAllTasks(dir, c.cpusetRoot); err != nil {
			logrus.WithField("dir", dir).WithError(err).Warn("cpuset: failed evacuating core cpuset on teardown")
		}
		if err := os.Remove(dir); err != nil {
			logrus.WithField("dir", dir).WithError(err).Warn("cpuset: failed removing core cpuset")
		}
	}
	unmanaged := c.unmanagedPath()
	if err := moveAllTasks(unmanaged, c.cpusetRoot); err != nil {
		logrus.WithField("dir", unmanaged).WithError(err).Warn("cpuset: failed evacuating unmanaged cpuset on teardown")
	}
	if err := os.Remove(unmanaged); err != nil {
		logrus.WithField("dir", unmanaged).WithError(err).Warn("cpuset: failed removing unmanaged cpuset")
	}
	if err := os.Remove(c.arbiterRoot); err != nil {
		logrus.WithField("dir", c.arbiterRoot).WithError(err).Warn("cpuset: failed removing arbiter root cpuset")
	}
	return nil
}
