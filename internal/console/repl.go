package console

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/kvesta/scanconsole/config"
	"github.com/kvesta/scanconsole/internal/router"
	"github.com/kvesta/scanconsole/pkg/apiclient"
)

const replHelp = `Commands:
  <page> | nav <page>       switch page (login, dashboard, upload, reports, result, admin)
  login <user> <password>   log in
  logout                    forget the stored session
  upload <file>             upload a file for scanning
  view <id>                 show a report
  delete <id>               delete a report
  export <id>               print the export link of a report
  refresh                   reload the current page
  help                      show this help
  quit                      leave`

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.w.Write(p)
}

// Run reads one event per line from in until EOF or quit. Results that
// arrive later repaint the page they belong to if it is still shown.
func (c *Console) Run(in io.Reader, out io.Writer) error {
	w := &syncWriter{w: out}

	c.OnUpdate = func(p router.Page) {
		if p == c.Router.Active() {
			c.Render(w)
		}
	}
	defer func() { c.OnUpdate = nil }()

	c.Start()
	c.Render(w)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(w, "> ")
		if !scanner.Scan() {
			break
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		quit := c.dispatch(fields, scanner, w)
		if quit {
			break
		}
	}

	c.Wait()
	return scanner.Err()
}

func (c *Console) dispatch(fields []string, scanner *bufio.Scanner, w io.Writer) bool {
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "quit", "exit":
		return true

	case "help", "?":
		fmt.Fprintln(w, replHelp)
		return false

	case "nav":
		if len(args) != 1 {
			fmt.Fprintln(w, "usage: nav <page>")
			return false
		}
		if !c.navigateTo(args[0], w) {
			return false
		}

	case "login":
		if len(args) != 2 {
			fmt.Fprintln(w, "usage: login <user> <password>")
			return false
		}
		if c.Router.Active() != router.Login {
			c.Navigate(router.Login)
		}
		c.SubmitLogin(args[0], args[1])

	case "logout":
		_ = c.Logout()

	case "upload":
		if c.Router.Active() != router.Upload {
			c.Navigate(router.Upload)
		}
		path := ""
		if len(args) > 0 {
			path = strings.Join(args, " ")
		}
		c.SubmitUpload(path)

	case "view":
		if len(args) != 1 {
			fmt.Fprintln(w, "usage: view <id>")
			return false
		}
		c.ViewReport(apiclient.ID(args[0]))

	case "delete":
		if len(args) != 1 {
			fmt.Fprintln(w, "usage: delete <id>")
			return false
		}
		fmt.Fprintf(w, "Delete report #%s? [y/N] ", args[0])
		if !scanner.Scan() || !confirmed(scanner.Text()) {
			return false
		}
		c.DeleteReport(apiclient.ID(args[0]))

	case "export":
		if len(args) != 1 {
			fmt.Fprintln(w, "usage: export <id>")
			return false
		}
		fmt.Fprintln(w, config.Yellow(c.ExportURL(apiclient.ID(args[0]))))
		return false

	case "refresh":
		c.Navigate(c.Router.Active())

	default:
		if !c.navigateTo(cmd, w) {
			return false
		}
	}

	c.Render(w)
	return false
}

func (c *Console) navigateTo(name string, w io.Writer) bool {
	p, err := router.ParsePage(name)
	if err != nil {
		fmt.Fprintf(w, "unknown command or page %q, try help\n", name)
		return false
	}

	c.Navigate(p)
	return true
}

func confirmed(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
