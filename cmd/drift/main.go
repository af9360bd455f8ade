package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/solenne/drift"
	"github.com/solenne/drift/api"
	"github.com/solenne/drift/synth"
)

type apiCallbacks struct {
	e *drift.Engine
}

func (cb *apiCallbacks) Status() (interface{}, error) {
	return cb.e.Status(), nil
}

func (cb *apiCallbacks) SetBPM(bpm float64) error {
	cb.e.SetBPM(bpm)
	return nil
}

func (cb *apiCallbacks) SetLevel(level float64) error {
	cb.e.SetLevel(level)
	return nil
}

func (cb *apiCallbacks) Start() error {
	cb.e.Start()
	return nil
}

func (cb *apiCallbacks) Stop() error {
	cb.e.Stop()
	return nil
}

func main() {
	addr := flag.String("addr", ":7999", "control api listen address")
	bpm := flag.Float64("bpm", 76, "tempo in beats per minute")
	level := flag.Float64("level", 0.8, "master output level [0,1]")
	seed := flag.Int64("seed", 0, "track seed (0 picks one from the clock)")
	flag.Parse()

	s := *seed
	if env := os.Getenv("DRIFT_SEED"); env != "" {
		if v, err := strconv.ParseInt(env, 10, 64); err == nil {
			s = v
		}
	}
	if s == 0 {
		s = time.Now().UnixNano()
	}

	ctx, err := synth.NewContext(*level)
	if err != nil {
		log.Fatalf("audio: %v", err)
	}
	defer ctx.Close()

	e, err := drift.NewEngine(drift.Config{
		Graph: ctx,
		BPM:   *bpm,
		Seed:  s,
	})
	if err != nil {
		log.Fatal(err)
	}
	e.Start()

	st := e.Status()
	log.Printf("playing: kit=%s synth=%s bpm=%v seed=%d", st.Kit, st.Synth, st.BPM, s)

	handler := api.NewHandler(&apiCallbacks{e: e})
	log.Fatal(http.ListenAndServe(*addr, handler))
}
