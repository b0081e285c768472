package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/thexDman/domain-monitoring-devops/pkg/client"
)

// Console is the operator's session-guarded view of the monitoring
// service: the domain table, the three mutation workflows, the
// selection state and the scan trigger, driven by an interactive loop.
type Console struct {
	client   *client.Client
	tokens   TokenStore
	in       io.Reader
	renderer *Renderer

	selection *Selection
	list      *ListController
	add       *Workflow
	bulk      *Workflow
	del       *DeleteWorkflow
	scan      *ScanTrigger
}

// New wires up a console against the given client and token store,
// reading commands from in and rendering to out.
func New(c *client.Client, tokens TokenStore, in io.Reader, out io.Writer) *Console {
	renderer := NewRenderer(out)
	selection := NewSelection()
	list := NewListController(c, renderer, selection)

	con := &Console{
		client:    c,
		tokens:    tokens,
		in:        in,
		renderer:  renderer,
		selection: selection,
		list:      list,
	}

	reload := func() { con.list.Load(context.Background()) }

	con.add = NewWorkflow("add", Messages{
		Working: "Adding domain...",
		Success: "Domain added!",
		Failure: "Request failed",
	}, renderer, reload)

	con.bulk = NewWorkflow("bulk", Messages{
		Working: "Uploading...",
		Success: "Bulk upload completed!",
		Failure: "Upload failed",
	}, renderer, reload)

	con.del = NewDeleteWorkflow(Messages{
		Working: "Deleting...",
		Success: "Deleted!",
		Failure: "Request failed",
	}, renderer, reload)

	con.scan = NewScanTrigger(c, renderer, func(ctx context.Context) { con.list.Load(ctx) })

	return con
}

// Run guards the session and, when a token is present, performs the
// initial list load and enters the command loop. With no stored token
// it returns ErrNotAuthenticated before any network call is made.
func (con *Console) Run(ctx context.Context) error {
	if err := Guard(con.tokens); err != nil {
		return err
	}

	con.list.Load(ctx)

	reader := bufio.NewReader(con.in)
	for {
		con.renderer.Prompt("domwatch>")

		line, err := reader.ReadString('\n')
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		quit, err := con.execute(ctx, line, reader)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

// execute dispatches one console command. It returns true when the
// loop should stop.
func (con *Console) execute(ctx context.Context, line string, reader *bufio.Reader) (bool, error) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help":
		con.printHelp()
	case "list", "reload":
		con.list.Load(ctx)
	case "add":
		con.runAdd(ctx, args, reader)
	case "import":
		con.runImport(ctx, args)
	case "delete":
		con.runDelete(ctx, args, reader)
	case "select":
		con.runSelect(args)
	case "scan":
		// Errors are already surfaced as a notice; an overlapping
		// request is silently ignored like a disabled control.
		_ = con.scan.Fire(ctx)
	case "logout":
		return true, con.Logout()
	case "quit", "exit":
		return true, nil
	default:
		con.renderer.Notice(fmt.Sprintf("Unknown command %q (try 'help')", cmd))
	}
	return false, nil
}

// runAdd drives the add-domain workflow: open, read the domain field,
// submit. An empty field dismisses the dialog.
func (con *Console) runAdd(ctx context.Context, args []string, reader *bufio.Reader) {
	con.add.Open()

	domain := strings.Join(args, " ")
	if domain == "" {
		con.renderer.Prompt("Domain:")
		line, err := reader.ReadString('\n')
		if err != nil {
			con.add.Dismiss()
			return
		}
		domain = strings.TrimSpace(line)
	}
	if domain == "" {
		con.add.Dismiss()
		return
	}

	_ = con.add.Submit(ctx, func(ctx context.Context) error {
		return con.client.AddDomain(ctx, domain)
	})
}

// runImport drives the bulk-import workflow with the named file.
func (con *Console) runImport(ctx context.Context, args []string) {
	if len(args) != 1 {
		con.renderer.Notice("Usage: import <file>")
		return
	}

	con.bulk.Open()

	f, err := os.Open(args[0])
	if err != nil {
		con.renderer.Status("bulk", statusError, fmt.Sprintf("Cannot open %s", args[0]))
		con.bulk.Dismiss()
		return
	}
	defer f.Close()

	_ = con.bulk.Submit(ctx, func(ctx context.Context) error {
		_, err := con.client.BulkImport(ctx, args[0], f)
		return err
	})
}

// runDelete drives the delete workflow. "delete <row>" targets one
// row regardless of the selection; "delete selected" targets the
// rows marked at the moment of invocation.
func (con *Console) runDelete(ctx context.Context, args []string, reader *bufio.Reader) {
	if len(args) != 1 {
		con.renderer.Notice("Usage: delete <row|domain|selected>")
		return
	}

	var targets []string
	if args[0] == "selected" {
		targets = con.selection.List()
		if len(targets) == 0 {
			con.renderer.Notice("No rows selected")
			return
		}
	} else {
		row, ok := con.list.RowByIdentifier(args[0])
		if !ok {
			con.renderer.Notice(fmt.Sprintf("No such row %q", args[0]))
			return
		}
		targets = []string{row.Domain}
	}

	con.del.OpenFor(targets)
	con.renderer.Status("delete", statusLoading, fmt.Sprintf("Delete '%s'?", strings.Join(targets, "', '")))

	con.renderer.Prompt("Confirm [y/N]:")
	line, err := reader.ReadString('\n')
	if err != nil || !strings.EqualFold(strings.TrimSpace(line), "y") {
		con.del.Dismiss()
		return
	}

	_ = con.del.Confirm(ctx, func(ctx context.Context, domains []string) error {
		_, err := con.client.DeleteDomains(ctx, domains)
		return err
	})
}

// runSelect updates the selection: "select all", "select none", or
// "select <row>" to toggle a single row's mark.
func (con *Console) runSelect(args []string) {
	if len(args) != 1 {
		con.renderer.Notice("Usage: select <row|all|none>")
		return
	}

	switch args[0] {
	case "all":
		con.list.SelectAll(true)
	case "none":
		con.list.SelectAll(false)
	default:
		if !con.list.Toggle(args[0]) {
			con.renderer.Notice(fmt.Sprintf("No such row %q", args[0]))
		}
	}
}

// Logout clears the stored token and sends the operator back to the
// login destination unconditionally.
func (con *Console) Logout() error {
	if err := con.tokens.Clear(); err != nil {
		return err
	}
	con.renderer.Placeholder("Logged out. Run 'domwatch login' to sign in again.")
	return nil
}

func (con *Console) printHelp() {
	help := []string{
		"list              reload the domain table",
		"add [domain]      add one domain to the watch list",
		"import <file>     bulk-import domains from a text file",
		"delete <row>      delete one row's domain",
		"delete selected   delete every selected row",
		"select <row>      toggle a row's selection mark",
		"select all|none   set or clear every row's mark",
		"scan              request an immediate rescan",
		"logout            clear the session and leave",
		"quit              leave the console",
	}
	for _, line := range help {
		fmt.Fprintf(con.renderer.w, "  %s\n", line)
	}
}

// List exposes the list controller, used by command wiring and tests.
func (con *Console) List() *ListController { return con.list }

// AddWorkflow exposes the add workflow.
func (con *Console) AddWorkflow() *Workflow { return con.add }

// BulkWorkflow exposes the bulk-import workflow.
func (con *Console) BulkWorkflow() *Workflow { return con.bulk }

// DeleteWorkflow exposes the delete workflow.
func (con *Console) DeleteWorkflow() *DeleteWorkflow { return con.del }

// Scan exposes the scan trigger.
func (con *Console) Scan() *ScanTrigger { return con.scan }

// Selection exposes the selection state.
func (con *Console) Selection() *Selection { return con.selection }
