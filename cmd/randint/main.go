// Command randint prints a cryptographically strong random integer from an
// inclusive range read from stdin.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"os/signal"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/AaronLay10/WishEngine/internal/fortune"
	"github.com/AaronLay10/WishEngine/internal/logging"
)

var errCancelled = errors.New("cancelled by user")

func main() {
	logging.Init("randint")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		fmt.Println("\nCancelled by user.")
		os.Exit(1)
	}()

	fmt.Println("Cryptographically strong random number generator")
	fmt.Println()

	if err := run(os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, errCancelled) {
			fmt.Println("\nCancelled by user.")
		} else {
			log.Error().Err(err).Msg("randint failed")
		}
		os.Exit(1)
	}
}

func run(in io.Reader, out io.Writer) error {
	lower, upper, err := readBounds(bufio.NewReader(in), out)
	if err != nil {
		return err
	}

	n, err := fortune.SecureBigInRange(lower, upper)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Random integer in [%d, %d]: %d\n", lower, upper, n)
	return nil
}

// readBounds prompts until the input is two integers with min <= max.
// Bounds have no size limit. End of input counts as cancellation.
func readBounds(r *bufio.Reader, out io.Writer) (*big.Int, *big.Int, error) {
	for {
		fmt.Fprint(out, "Enter two integers (min max): ")
		line, err := r.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || strings.TrimSpace(line) == "") {
			if errors.Is(err, io.EOF) {
				return nil, nil, errCancelled
			}
			return nil, nil, err
		}

		lower, upper, ok := parseBounds(line)
		if !ok {
			fmt.Fprint(out, "Please enter exactly two integers separated by whitespace.\n\n")
		} else if lower.Cmp(upper) > 0 {
			fmt.Fprint(out, "The first number must be less than or equal to the second.\n\n")
		} else {
			return lower, upper, nil
		}

		if err != nil {
			return nil, nil, errCancelled
		}
	}
}

func parseBounds(line string) (*big.Int, *big.Int, bool) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return nil, nil, false
	}
	lower, ok := new(big.Int).SetString(fields[0], 10)
	if !ok {
		return nil, nil, false
	}
	upper, ok := new(big.Int).SetString(fields[1], 10)
	if !ok {
		return nil, nil, false
	}
	return lower, upper, true
}
