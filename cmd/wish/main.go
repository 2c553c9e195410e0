// Command wish draws a fortune from the terminal. Without -machine and
// -message it shows a numbered machine menu and prompts for the wish.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"

	"github.com/AaronLay10/WishEngine/internal/config"
	"github.com/AaronLay10/WishEngine/internal/fortune"
	"github.com/AaronLay10/WishEngine/internal/i18n"
	"github.com/AaronLay10/WishEngine/internal/logging"
	"github.com/AaronLay10/WishEngine/internal/remote"
)

type options struct {
	catalogPath string
	machine     string
	message     string
	remoteURL   string
	lang        string
	seed        int64
}

func main() {
	var opts options
	flag.StringVar(&opts.catalogPath, "catalog", "", "path to a paradise.yaml catalog (default: embedded)")
	flag.StringVar(&opts.machine, "machine", "", "machine type; skips the menu")
	flag.StringVar(&opts.message, "message", "", "wish text; skips the prompt")
	flag.StringVar(&opts.remoteURL, "remote", "", "draw through the evaluator at this base URL")
	flag.StringVar(&opts.lang, "lang", "", "output language (en, zh); defaults to $LANG")
	flag.Int64Var(&opts.seed, "seed", -1, "reproduce the draw for this seed (0-4294967295)")
	flag.Parse()

	logging.Init("wish")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, os.Stdin, os.Stdout); err != nil {
		log.Error().Err(err).Msg("draw failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, in io.Reader, out io.Writer) error {
	if opts.seed >= 0 && opts.remoteURL != "" {
		return errors.New("-seed draws locally and cannot be combined with -remote")
	}
	if opts.seed > math.MaxUint32 {
		return fmt.Errorf("seed %d out of range", opts.seed)
	}

	tag := outputLanguage(opts.lang)

	catalog, err := loadCatalog(opts.catalogPath)
	if err != nil {
		return err
	}

	engine, err := fortune.NewEngine(catalog)
	if err != nil {
		return err
	}

	reader := bufio.NewReader(in)

	machine := strings.TrimSpace(opts.machine)
	if machine == "" {
		machine, err = promptMachine(reader, out, tag, engine.Catalog().Machines)
		if err != nil {
			return err
		}
	}

	var outcome *fortune.Outcome
	switch {
	case opts.seed >= 0:
		outcome, err = engine.Reproduce(machine, uint32(opts.seed))
	default:
		message := opts.message
		if strings.TrimSpace(message) == "" {
			fmt.Fprint(out, i18n.Text(tag, i18n.KeyEnterWish))
			message, err = readLine(reader)
			if err != nil {
				return err
			}
		}

		var drawer fortune.Drawer = engine
		if opts.remoteURL != "" {
			drawer = remote.NewClient(opts.remoteURL, nil)
		}
		outcome, err = drawer.Draw(ctx, machine, message)
	}
	if err != nil {
		return drawError{tag: tag, err: err}
	}

	printOutcome(out, tag, outcome)
	return nil
}

func loadCatalog(path string) (*fortune.Catalog, error) {
	if path == "" {
		return config.DefaultCatalog(), nil
	}
	return config.LoadCatalog(path)
}

// outputLanguage resolves -lang, then $LANG, falling back to English.
func outputLanguage(flagValue string) language.Tag {
	for _, v := range []string{flagValue, os.Getenv("LANG")} {
		// POSIX locales look like zh_CN.UTF-8.
		v, _, _ = strings.Cut(strings.TrimSpace(v), ".")
		if v == "" || v == "C" || v == "POSIX" {
			continue
		}
		if tag, ok := i18n.Match(strings.ReplaceAll(v, "_", "-")); ok {
			return tag
		}
	}
	return i18n.Default()
}

// promptMachine lists the machines and reads a 1-based choice, asking again
// until the answer is valid.
func promptMachine(r *bufio.Reader, out io.Writer, tag language.Tag, machines []string) (string, error) {
	fmt.Fprintln(out, i18n.Text(tag, i18n.KeyChooseMachine))
	for i, m := range machines {
		fmt.Fprintf(out, "%d. %s\n", i+1, m)
	}

	for {
		fmt.Fprint(out, i18n.Text(tag, i18n.KeyEnterNumber))
		line, err := readLine(r)
		if err != nil {
			return "", err
		}
		n, err := strconv.Atoi(line)
		if err == nil && n >= 1 && n <= len(machines) {
			return machines[n-1], nil
		}
		fmt.Fprintln(out, i18n.Text(tag, i18n.KeyInvalidChoice, len(machines)))
	}
}

// readLine returns the next trimmed line. io.EOF is only returned when the
// input ends with nothing left to read.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func printOutcome(out io.Writer, tag language.Tag, o *fortune.Outcome) {
	label := o.Scene.Label
	if label == "" {
		label = o.Scene.ID
	}
	fmt.Fprintln(out, i18n.Text(tag, i18n.KeyResultHeader))
	fmt.Fprintln(out, i18n.Text(tag, i18n.KeyResultScene, label))
	fmt.Fprintln(out, i18n.Text(tag, i18n.KeyResultFood, o.Food))
	fmt.Fprintln(out, i18n.Text(tag, i18n.KeyResultMiss, o.Miss))
}

// drawError carries a draw failure with its localized explanation.
type drawError struct {
	tag language.Tag
	err error
}

func (e drawError) Error() string {
	var re *remote.RemoteError
	if errors.As(e.err, &re) && re.Message != "" {
		return re.Message
	}
	return i18n.ErrorText(e.tag, fortune.Kind(e.err)) + " (" + e.err.Error() + ")"
}

func (e drawError) Unwrap() error {
	return e.err
}
