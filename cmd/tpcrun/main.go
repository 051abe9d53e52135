//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Command tpcrun is a thin reference driver over the two-party
// secret-sharing core. It is explicitly not part of the core: option
// parsing, mode dispatch, and process exit codes live here so that
// transport, party, ring, boolean, and persist stay free of os.Exit
// and of any notion of a CLI.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/markkurossi/beavernet/party"
	"github.com/markkurossi/beavernet/persist"
	"github.com/markkurossi/beavernet/prng"
	"github.com/markkurossi/beavernet/ring"
)

// defaultPort is the placeholder default port from spec §6.
const defaultPort = 12345

const demoX, demoY uint32 = 6, 7

func main() {
	var port int
	var server bool
	var name string
	var mode string
	var output string
	var iteration int
	var help bool

	flag.IntVar(&port, "p", defaultPort, "port")
	flag.IntVar(&port, "port", defaultPort, "port")
	flag.BoolVar(&server, "s", false, "run as party 0 (listener)")
	flag.BoolVar(&server, "server", false, "run as party 0 (listener)")
	flag.StringVar(&name, "n", "localhost", "peer host name (party 1 only)")
	flag.StringVar(&name, "name", "localhost", "peer host name (party 1 only)")
	flag.StringVar(&mode, "m", "test", `mode: "test", "bench", or "deal"`)
	flag.StringVar(&mode, "mode", "test", `mode: "test", "bench", or "deal"`)
	flag.StringVar(&output, "o", "tpcrun", "share/triple file path prefix")
	flag.StringVar(&output, "output", "tpcrun", "share/triple file path prefix")
	flag.IntVar(&iteration, "i", 1, "number of multiplications to run")
	flag.IntVar(&iteration, "iteration", 1, "number of multiplications to run")
	flag.BoolVar(&help, "h", false, "show usage")
	flag.BoolVar(&help, "help", false, "show usage")
	flag.Parse()

	log.SetFlags(0)

	if help {
		usage()
		os.Exit(0)
	}

	// Mode dispatch is a local map built here at main() time, not a
	// package-level mutable global (spec §9 design note).
	dispatch := map[string]func() error{
		"deal": func() error { return deal(output, iteration) },
		"test": func() error { return runParty(mode, server, name, port, output, iteration) },
		"bench": func() error {
			return runParty(mode, server, name, port, output, iteration)
		},
	}

	fn, ok := dispatch[mode]
	if !ok {
		log.Printf("unknown mode %q\n", mode)
		usage()
		os.Exit(64)
	}

	if err := fn(); err != nil {
		log.Printf("tpcrun %s: %v\n", mode, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: tpcrun [flags] <party_id>

party_id is 0 or 1.

flags:
  -p, --port <n>       TCP port (default %d)
  -s, --server         run as party 0 (listener)
  -n, --name <host>    peer host name, party 1 only (default "localhost")
  -m, --mode <mode>    "test", "bench", or "deal" (default "test")
  -o, --output <path>  share/triple file path prefix (default "tpcrun")
  -i, --iteration <n>  number of multiplications to run (default 1)
  -h, --help           show this message
`, defaultPort)
}

// deal generates n triples and a fixed pair of demo input shares and
// writes the per-party files that "test"/"bench" read. This is the
// trusted-dealer role described in spec §3, exposed here as a CLI
// convenience rather than a core operation.
func deal(output string, n int) error {
	if n <= 0 {
		n = 1
	}
	e, err := ring.NewEngine(32)
	if err != nil {
		return err
	}
	src, err := prng.NewChaCha20Source()
	if err != nil {
		return err
	}

	triples, err := e.GenerateTriples(src, n)
	if err != nil {
		return err
	}
	shares0, shares1, err := e.ShareTriples(src, triples)
	if err != nil {
		return err
	}
	rec0 := make([]persist.TripleRecord, len(shares0))
	rec1 := make([]persist.TripleRecord, len(shares1))
	for i := range shares0 {
		rec0[i] = persist.TripleRecord{A: shares0[i].A.V, B: shares0[i].B.V, C: shares0[i].C.V}
		rec1[i] = persist.TripleRecord{A: shares1[i].A.V, B: shares1[i].B.V, C: shares1[i].C.V}
	}
	if err := persist.WriteTripleSharePair(
		output+".triples.p0", output+".triples.p1", rec0, rec1); err != nil {
		return err
	}

	x0, x1, err := e.Split(src, demoX)
	if err != nil {
		return err
	}
	y0, y1, err := e.Split(src, demoY)
	if err != nil {
		return err
	}
	for _, wr := range []struct {
		path string
		v    uint32
	}{
		{output + ".x.p0", x0.V},
		{output + ".x.p1", x1.V},
		{output + ".y.p0", y0.V},
		{output + ".y.p1", y1.V},
	} {
		if err := persist.WriteScalarShare(wr.path, wr.v, false); err != nil {
			return err
		}
	}
	log.Printf("dealt %d triple(s) and demo input shares under %q\n", n, output)
	return nil
}

// runParty loads one party's dealt shares and runs iteration Beaver
// multiplications of the fixed demo inputs, reconstructing and
// printing the product each time. In "bench" mode it additionally
// reports elapsed wall-clock time.
func runParty(mode string, server bool, name string, port int, output string, iterations int) error {
	args := flag.Args()
	if len(args) != 1 {
		usage()
		return fmt.Errorf("expected exactly one positional argument, got %d", len(args))
	}
	var id int
	switch args[0] {
	case "0":
		id = 0
	case "1":
		id = 1
	default:
		return fmt.Errorf("invalid party_id %q: expected 0 or 1", args[0])
	}
	// -s/--server is a convenience alias for party 0; if given it
	// must agree with the positional party_id.
	if server && id != 0 {
		return fmt.Errorf("-s/--server conflicts with party_id %d", id)
	}

	e, err := ring.NewEngine(32)
	if err != nil {
		return err
	}

	xShare, err := readScalar(e, fmt.Sprintf("%s.x.p%d", output, id))
	if err != nil {
		return err
	}
	yShare, err := readScalar(e, fmt.Sprintf("%s.y.p%d", output, id))
	if err != nil {
		return err
	}
	triples, err := readTriples(fmt.Sprintf("%s.triples.p%d", output, id))
	if err != nil {
		return err
	}
	if len(triples) < iterations {
		return fmt.Errorf("have %d dealt triples, need %d; re-run with mode=deal -i %d",
			len(triples), iterations, iterations)
	}

	p, err := party.New(id, name, port)
	if err != nil {
		return err
	}
	if err := p.Start(); err != nil {
		return err
	}
	defer p.End()

	bag := ring.NewBag(triples)
	start := time.Now()
	for i := 0; i < iterations; i++ {
		t, err := bag.Take()
		if err != nil {
			return err
		}
		z, err := e.Multiply(p, t, xShare, yShare)
		if err != nil {
			return err
		}
		result, err := e.Reconstruct(p, z)
		if err != nil {
			return err
		}

		// Affine post-processing on the still-shared product, public
		// constants 2 and 5, before the final reveal.
		affine := e.AffineShare(id, 2, z, 5)
		affineResult, err := e.Reconstruct(p, affine)
		if err != nil {
			return err
		}

		if mode == "test" {
			log.Printf("party %d: iteration %d: result=%d affine(2*result+5)=%d\n",
				id, i, result, affineResult)
		}
	}
	if mode == "bench" {
		elapsed := time.Since(start)
		log.Printf("party %d: %d multiplications in %v (%.1f/s)\n",
			id, iterations, elapsed, float64(iterations)/elapsed.Seconds())
	}
	return nil
}

func readScalar(e *ring.Engine, path string) (ring.Share, error) {
	v, err := persist.ReadScalarShare(path)
	if err != nil {
		return ring.Share{}, err
	}
	return e.NewShare(v), nil
}

func readTriples(path string) ([]ring.Triple, error) {
	recs, err := persist.ReadTriples(path)
	if err != nil {
		return nil, err
	}
	out := make([]ring.Triple, len(recs))
	for i, r := range recs {
		out[i] = ring.Triple{
			A:   ring.Share{V: r.A},
			B:   ring.Share{V: r.B},
			C:   ring.Share{V: r.C},
			Seq: uint64(i),
		}
	}
	return out, nil
}
