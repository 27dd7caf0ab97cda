package main

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const (
	cueSampleRate = beep.SampleRate(44100)
	cueTone       = 660
	cueLength     = 60 * time.Millisecond
)

// initSound opens the speaker and returns the catch cue and a closer.
func initSound() (func(), func(), error) {
	if err := speaker.Init(cueSampleRate, cueSampleRate.N(time.Second/10)); err != nil {
		return nil, func() {}, err
	}
	cue := func() {
		sine, err := generators.SineTone(cueSampleRate, cueTone)
		if err != nil {
			return
		}
		speaker.Play(beep.Take(cueSampleRate.N(cueLength), sine))
	}
	return cue, speaker.Close, nil
}
