// Copyright 2026, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"flag"
	"fmt"
	"iter"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/ezrec/carrera/catalog"
	"github.com/ezrec/carrera/internal"
	"github.com/ezrec/carrera/race"
	"github.com/ezrec/carrera/runner"
	"github.com/ezrec/carrera/translate"
	"github.com/ezrec/carrera/vm"
)

var f = translate.From

func parseTunables(list string) (values []int64, err error) {
	for _, word := range strings.FieldsFunc(list, func(r rune) bool { return r == ',' || r == ' ' }) {
		var value int64
		value, err = strconv.ParseInt(word, 10, 64)
		if err != nil {
			return
		}
		values = append(values, value)
	}
	return
}

func main() {
	var compile string
	var script string
	var input string
	var output string
	var catalogFile string
	var permit string
	var tunables string
	var parallel int
	var steps int
	var limit int
	var listing bool
	var verbose bool

	flag.StringVar(&compile, "c", "", ".asm file to race")
	flag.StringVar(&script, "r", "", ".star race script to use")
	flag.StringVar(&input, "i", "", "Tape input of work units ('-' for stdin)")
	flag.StringVar(&output, "o", "", "Tape output of raced work units ('-' for stdout)")
	flag.StringVar(&catalogFile, "catalog", "", ".yaml instruction catalog")
	flag.StringVar(&permit, "p", "", "Permitted instructions (default: all, or the race script's)")
	flag.StringVar(&tunables, "t", "", "Initial tunable values, comma separated")
	flag.IntVar(&parallel, "j", 0, "Concurrent executions (default: GOMAXPROCS)")
	flag.IntVar(&steps, "steps", -1, "Correct answers to finish; 0 races every unit (default: race script's, or 20)")
	flag.IntVar(&limit, "limit", vm.CYCLE_LIMIT, "Cycle ceiling per execution")
	flag.BoolVar(&listing, "l", false, "Print the assembled listing")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if len(compile) == 0 {
		log.Fatalf("%v: no program; use -c", os.Args[0])
	}

	text, err := os.ReadFile(compile)
	if err != nil {
		log.Fatalf("%v: %v", compile, err)
	}

	rn := runner.New(compile, "")
	rn.Verbose = verbose
	rn.Edit(string(text))

	cat := catalog.Default()
	if len(catalogFile) != 0 {
		inf, err := os.Open(catalogFile)
		if err != nil {
			log.Fatalf("%v: %v", catalogFile, err)
		}
		cat, err = catalog.Load(inf)
		inf.Close()
		if err != nil {
			log.Fatalf("%v: %v", catalogFile, err)
		}
	}

	// Race description.
	var desc *race.Script
	if len(script) != 0 {
		desc, err = race.LoadScript(script, nil)
		if err != nil {
			log.Fatal(err)
		}
	}

	permitted := catalog.All()
	if len(permit) != 0 {
		permitted, err = catalog.ParseSet(permit)
		if err != nil {
			log.Fatalf("-p: %v", err)
		}
	} else if desc != nil && desc.Permitted != nil {
		permitted = desc.Permitted
	}

	report := rn.Validate(permitted)
	for _, diag := range report.Diagnostics {
		fmt.Fprintf(os.Stderr, "%v: %v\n", compile, diag)
	}
	for _, op := range report.Missing {
		fmt.Fprintf(os.Stderr, "%v: %v\n", compile, vm.ErrNotPermitted(op))
	}
	if !report.Ok {
		log.Fatalf("%v: %v", compile, f("program rejected"))
	}

	prog, err := rn.Program()
	if err != nil {
		log.Fatalf("%v: %v", compile, err)
	}

	if listing {
		fmt.Print(prog)
	}

	in := &vm.Interpreter{
		Verbose:   verbose,
		Costs:     cat,
		Permitted: permitted,
		Limit:     limit,
	}

	rc := race.NewRace(prog, in)
	rc.Verbose = verbose
	rc.Parallel = parallel

	var seqs []iter.Seq[race.WorkUnit]

	if desc != nil {
		rc.Steps = desc.Steps
		rc.Panel, err = desc.Panel(vm.TUNABLE_SLOTS)
		if err != nil {
			log.Fatalf("%v: %v", script, err)
		}
		seqs = append(seqs, desc.Values())
	}

	if steps >= 0 {
		rc.Steps = steps
	}

	if len(tunables) != 0 {
		values, err := parseTunables(tunables)
		if err != nil {
			log.Fatalf("-t: %v", err)
		}
		for n, value := range values {
			err = rc.Panel.Set(n, value)
			if err != nil {
				log.Fatalf("-t: %v", err)
			}
		}
	}

	tape := &race.Tape{}
	if len(input) != 0 {
		if input == "-" {
			tape.Input = os.Stdin
		} else {
			inf, err := os.Open(input)
			if err != nil {
				log.Fatalf("%v: %v", input, err)
			}
			defer inf.Close()
			tape.Input = inf
		}
		seqs = append(seqs, tape.Units())
	}

	if len(seqs) == 0 {
		log.Fatalf("%v: no work units; use -r or -i", os.Args[0])
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := rc.Run(ctx, internal.IterSeqConcat(seqs...))
	if err != nil {
		log.Fatal(err)
	}
	if err = tape.Err(); err != nil {
		log.Fatalf("%v: %v", input, err)
	}

	if len(output) != 0 {
		if output == "-" {
			tape.Output = os.Stdout
		} else {
			ouf, err := os.Create(output)
			if err != nil {
				log.Fatalf("%v: %v", output, err)
			}
			defer ouf.Close()
			tape.Output = ouf
		}
		for _, lap := range res.Laps {
			err = tape.Send(lap.WorkUnit)
			if err != nil {
				log.Fatalf("%v: %v", output, err)
			}
		}
	}

	if verbose {
		for _, lap := range res.Laps {
			if err := lap.Err(); err != nil {
				log.Print(err)
			}
		}
	}

	fmt.Print(res.Summary())
}
