package omgo

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"time"
)

// OMCOptions configures how a local OMC server is spawned.
type OMCOptions struct {
	// OMHome is the OpenModelica installation root. When empty, the
	// OPENMODELICAHOME environment variable is consulted, then $PATH.
	OMHome string
	// Timeout bounds how long to wait for the server to publish its
	// endpoint (default 10s).
	Timeout time.Duration
	Verbose bool
}

// Process is a locally spawned omc server. The endpoint it publishes can be
// dialed with DialZMQ; Launch does both.
type Process struct {
	Endpoint string

	cmd     *exec.Cmd
	logPath string
	verbose bool
}

var portfileRe = regexp.MustCompile(`Dumped server port in file: (.*)`)

// StartOMC launches omc with --interactive=zmq and waits for it to write
// its port file, which carries the ZeroMQ endpoint to connect to.
func StartOMC(ctx context.Context, opts OMCOptions) (*Process, error) {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}

	bin, omhome, err := findOMC(opts.OMHome)
	if err != nil {
		return nil, err
	}

	suffix := randomSuffix()
	logFile, err := os.CreateTemp("", "openmodelica."+suffix+".log")
	if err != nil {
		return nil, fmt.Errorf("create omc log file: %w", err)
	}

	cmd := exec.Command(bin, "--locale=C", "--interactive=zmq", "-z="+suffix)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	if omhome != "" {
		cmd.Env = append(os.Environ(), "PATH="+filepath.Join(omhome, "bin")+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
	if err := cmd.Start(); err != nil {
		logFile.Close()
		os.Remove(logFile.Name())
		return nil, fmt.Errorf("start omc: %w", err)
	}
	logFile.Close()

	p := &Process{cmd: cmd, logPath: logFile.Name(), verbose: opts.Verbose}
	p.logf("started omc pid=%d, watching %s", cmd.Process.Pid, p.logPath)

	endpoint, err := p.waitForEndpoint(ctx, opts.Timeout)
	if err != nil {
		log, _ := p.Log()
		p.Close()
		return nil, fmt.Errorf("omc server did not start (timeout=%v): %w\nlog:\n%s", opts.Timeout, err, log)
	}
	p.Endpoint = endpoint
	p.logf("omc server is up at %s", endpoint)
	return p, nil
}

// findOMC locates the omc binary: explicit root, OPENMODELICAHOME, $PATH.
func findOMC(omhome string) (bin, root string, err error) {
	if omhome == "" {
		omhome = os.Getenv("OPENMODELICAHOME")
	}
	if omhome != "" {
		bin := filepath.Join(omhome, "bin", "omc")
		if _, err := os.Stat(bin); err != nil {
			return "", "", fmt.Errorf("no omc under %s: %w", omhome, err)
		}
		return bin, omhome, nil
	}
	bin, lookErr := exec.LookPath("omc")
	if lookErr != nil {
		return "", "", fmt.Errorf("cannot find the omc executable, install OpenModelica from openmodelica.org: %w", lookErr)
	}
	return bin, filepath.Dir(filepath.Dir(bin)), nil
}

// waitForEndpoint polls the omc log for the port file path, then reads the
// endpoint out of the port file.
func (p *Process) waitForEndpoint(ctx context.Context, timeout time.Duration) (string, error) {
	return withRetry(ctx, pollConfig(timeout), "omc endpoint", p.verbose, func() (string, error) {
		log, err := os.ReadFile(p.logPath)
		if err != nil {
			return "", err
		}
		matches := portfileRe.FindAllSubmatch(log, -1)
		if len(matches) == 0 {
			return "", fmt.Errorf("omc port file not available yet")
		}
		portfile := string(matches[len(matches)-1][1])
		endpoint, err := os.ReadFile(filepath.Clean(portfile))
		if err != nil {
			return "", err
		}
		return string(endpoint), nil
	})
}

// Log returns the content of the server's log file.
func (p *Process) Log() (string, error) {
	b, err := os.ReadFile(p.logPath)
	if err != nil {
		return "", fmt.Errorf("omc log not available: %w", err)
	}
	return string(b), nil
}

// Close kills the server process and removes its log file. Sessions send
// quit() first so the server usually exits on its own.
func (p *Process) Close() error {
	var err error
	if p.cmd != nil && p.cmd.Process != nil {
		err = p.cmd.Process.Kill()
		p.cmd.Wait()
	}
	if p.logPath != "" {
		os.Remove(p.logPath)
	}
	return err
}

func (p *Process) logf(format string, args ...any) {
	if p.verbose {
		fmt.Printf("[OMC] "+format+"\n", args...)
	}
}

func randomSuffix() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		// still unique per process and launch
		return fmt.Sprintf("%d.%d", os.Getpid(), time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
