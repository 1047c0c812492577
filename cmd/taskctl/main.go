// Command taskctl manages a task list kept in an in-process task store and
// snapshotted to SQLite after every change.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/GoCodeAlone/tasker/comms"
	"github.com/GoCodeAlone/tasker/config"
	"github.com/GoCodeAlone/tasker/internal/quickadd"
	"github.com/GoCodeAlone/tasker/internal/version"
	"github.com/GoCodeAlone/tasker/persist"
	"github.com/GoCodeAlone/tasker/service"
	"github.com/GoCodeAlone/tasker/task"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			usage(os.Stderr)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

var errUsage = errors.New("usage")

func usage(w io.Writer) {
	fmt.Fprint(w, `taskctl — manage tasks

Usage:
  taskctl [flags] <command> [args]

Flags:
  --config <path>  YAML config file
  --db     <path>  SQLite file (overrides database.path)

Commands:
  version                          print version
  list [--status s] [--category c] list tasks, active first, then by
                                   priority, deadline and start time
  add <name> [task flags]          create a task
  quick <text>                     create a task from text, e.g.
                                   "report tomorrow 2pm 1h p2 work"
  import <id> <name> [task flags]  insert or merge a task under id
  update <id> [task flags]         change only the given fields
  done <id>                        mark a task done
  delete <id>                      delete a task
  reset                            delete every task

Task flags:
  --category c  --priority n  --deadline YYYY-MM-DD  --start HH:MM
  --duration minutes  --status active|done
`)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	global := flag.NewFlagSet("taskctl", flag.ContinueOnError)
	global.SetOutput(stderr)
	configPath := global.String("config", "", "path to YAML config file")
	dbPath := global.String("db", "", "path to SQLite file")
	if err := global.Parse(args); err != nil {
		return errUsage
	}
	rest := global.Args()
	if len(rest) == 0 {
		return errUsage
	}
	cmd, rest := rest[0], rest[1:]

	if cmd == "version" {
		fmt.Fprintf(stdout, "taskctl %s (commit %s, built %s)\n",
			version.Version, version.Commit, version.BuildDate)
		return nil
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	logger := cfg.Logger(stderr)

	db, err := persist.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	store := task.New(
		task.WithInitialCapacity(cfg.Store.InitialCapacity),
		task.WithMaxRecords(cfg.Store.MaxRecords),
	)
	n, err := db.Replay(ctx, store)
	if err != nil {
		return err
	}
	logger.Debug("tasks loaded", "count", n, "path", cfg.Database.Path)

	mgr := service.NewManager(store, comms.NewInMemoryBus(), logger)
	mgr.Bus().Subscribe(comms.TopicTasks, db.Snapshotter(store, logger))

	c := &cli{mgr: mgr, out: stdout, errOut: stderr}
	switch cmd {
	case "list":
		return c.cmdList(rest)
	case "add":
		return c.cmdAdd(ctx, rest)
	case "quick":
		return c.cmdQuick(ctx, rest)
	case "import":
		return c.cmdImport(ctx, rest)
	case "update":
		return c.cmdUpdate(ctx, rest)
	case "done":
		return c.cmdDone(ctx, rest)
	case "delete":
		return c.cmdDelete(ctx, rest)
	case "reset":
		if err := mgr.Reset(ctx); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "all tasks deleted")
		return nil
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n", cmd)
		return errUsage
	}
}

type cli struct {
	mgr    *service.Manager
	out    io.Writer
	errOut io.Writer
}

// taskFlags registers the per-task flags shared by add, import and update.
type taskFlags struct {
	fs       *flag.FlagSet
	category string
	priority int
	deadline string
	start    string
	duration int
	status   string
}

func newTaskFlags(name string, errOut io.Writer) *taskFlags {
	tf := &taskFlags{fs: flag.NewFlagSet(name, flag.ContinueOnError)}
	tf.fs.SetOutput(errOut)
	tf.fs.StringVar(&tf.category, "category", "", "task category")
	tf.fs.IntVar(&tf.priority, "priority", 3, "priority")
	tf.fs.StringVar(&tf.deadline, "deadline", "", "deadline YYYY-MM-DD")
	tf.fs.StringVar(&tf.start, "start", "", "start time HH:MM")
	tf.fs.IntVar(&tf.duration, "duration", 30, "duration in minutes")
	tf.fs.StringVar(&tf.status, "status", "active", "active or done")
	return tf
}

// parse accepts flags before or after positional arguments.
func (tf *taskFlags) parse(args []string) ([]string, error) {
	var positional []string
	for {
		if err := tf.fs.Parse(args); err != nil {
			return nil, errUsage
		}
		args = tf.fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func (tf *taskFlags) fields(name string) (task.Fields, error) {
	status, err := task.ParseStatus(tf.status)
	if err != nil {
		return task.Fields{}, err
	}
	return task.Fields{
		Name:         name,
		Category:     tf.category,
		Priority:     tf.priority,
		Deadline:     tf.deadline,
		StartTime:    tf.start,
		DurationMins: tf.duration,
		Status:       status,
	}, nil
}

// patch includes only the flags given on the command line. Category is
// rejected unless allowCategory is set, in which case it is ignored.
func (tf *taskFlags) patch(allowCategory bool) (task.Patch, error) {
	given := make(map[string]bool)
	tf.fs.Visit(func(f *flag.Flag) { given[f.Name] = true })

	var p task.Patch
	if given["category"] && !allowCategory {
		return p, errors.New("category cannot be changed after creation")
	}
	if given["priority"] {
		p.Priority = task.Set(tf.priority)
	}
	if given["deadline"] {
		p.Deadline = task.Set(tf.deadline)
	}
	if given["start"] {
		p.StartTime = task.Set(tf.start)
	}
	if given["duration"] {
		p.DurationMins = task.Set(tf.duration)
	}
	if given["status"] {
		st, err := task.ParseStatus(tf.status)
		if err != nil {
			return p, err
		}
		p.Status = task.Set(st)
	}
	return p, nil
}

func (c *cli) cmdList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	status := fs.String("status", "", "active or done")
	category := fs.String("category", "", "category")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	filter := task.Filter{Category: *category}
	if *status != "" {
		st, err := task.ParseStatus(*status)
		if err != nil {
			return err
		}
		filter.Status = &st
	}

	tasks := c.mgr.Sorted(filter)
	if len(tasks) == 0 {
		fmt.Fprintln(c.out, "no tasks")
		return nil
	}
	title := cases.Title(language.English)
	fmt.Fprintf(c.out, "%-5s %-30s %-12s %-4s %-10s %-5s %-5s %-6s\n",
		"ID", "NAME", "CATEGORY", "PRI", "DEADLINE", "START", "MINS", "STATUS")
	fmt.Fprintln(c.out, strings.Repeat("-", 85))
	for _, t := range tasks {
		fmt.Fprintf(c.out, "%-5d %-30s %-12s %-4d %-10s %-5s %-5d %-6s\n",
			t.ID, truncate(t.Name, 29), truncate(title.String(t.Category), 11),
			t.Priority, t.Deadline, t.StartTime, t.DurationMins, t.Status)
	}
	return nil
}

func (c *cli) cmdAdd(ctx context.Context, args []string) error {
	tf := newTaskFlags("add", c.errOut)
	pos, err := tf.parse(args)
	if err != nil {
		return err
	}
	if len(pos) == 0 {
		return fmt.Errorf("usage: taskctl add <name> [task flags]")
	}
	f, err := tf.fields(strings.Join(pos, " "))
	if err != nil {
		return err
	}
	id, err := c.mgr.Create(ctx, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "created task %d\n", id)
	return nil
}

func (c *cli) cmdQuick(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: taskctl quick <text>")
	}
	f, err := quickadd.Parse(strings.Join(args, " "), time.Now())
	if err != nil {
		return err
	}
	id, err := c.mgr.Create(ctx, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "created task %d: %s (%s, p%d, %s %s, %d min)\n",
		id, f.Name, f.Category, f.Priority, f.Deadline, f.StartTime, f.DurationMins)
	return nil
}

// cmdImport inserts a new task under id, or merges only the given flags into
// an existing one. Name and category of an existing task are kept.
func (c *cli) cmdImport(ctx context.Context, args []string) error {
	tf := newTaskFlags("import", c.errOut)
	pos, err := tf.parse(args)
	if err != nil {
		return err
	}
	if len(pos) < 2 {
		return fmt.Errorf("usage: taskctl import <id> <name> [task flags]")
	}
	id, err := parseID(pos[0])
	if err != nil {
		return err
	}
	if _, err := c.mgr.Get(id); err == nil {
		p, err := tf.patch(true)
		if err != nil {
			return err
		}
		if err := c.mgr.Update(ctx, id, p); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "imported task %d\n", id)
		return nil
	}
	f, err := tf.fields(strings.Join(pos[1:], " "))
	if err != nil {
		return err
	}
	got, err := c.mgr.Upsert(ctx, id, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "imported task %d\n", got)
	return nil
}

func (c *cli) cmdUpdate(ctx context.Context, args []string) error {
	tf := newTaskFlags("update", c.errOut)
	pos, err := tf.parse(args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return fmt.Errorf("usage: taskctl update <id> [task flags]")
	}
	id, err := parseID(pos[0])
	if err != nil {
		return err
	}
	p, err := tf.patch(false)
	if err != nil {
		return err
	}
	if err := c.mgr.Update(ctx, id, p); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "updated task %d\n", id)
	return nil
}

func (c *cli) cmdDone(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: taskctl done <id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := c.mgr.Update(ctx, id, task.Patch{Status: task.Set(task.StatusDone)}); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "task %d done\n", id)
	return nil
}

func (c *cli) cmdDelete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: taskctl delete <id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := c.mgr.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "deleted task %d\n", id)
	return nil
}

// --- helpers ---

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}
