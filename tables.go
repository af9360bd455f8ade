package drift

// Musical content tables, consumed read-only by the layers. Scales are
// semitone offsets from the tonal root.

type scale struct {
	name  string
	steps []int
}

var scales = []scale{
	{"aeolian", []int{0, 2, 3, 5, 7, 8, 10}},
	{"dorian", []int{0, 2, 3, 5, 7, 9, 10}},
	{"lydian", []int{0, 2, 4, 6, 7, 9, 11}},
	{"pentatonic", []int{0, 3, 5, 7, 10}},
}

// synthPreset is the sonic character of a melodic layer instance.
type synthPreset struct {
	name    string
	wave    Waveform
	filter  FilterType
	cutoff  float64 // center of the modulated cutoff range
	sweep   float64 // half-width of the modulated cutoff range
	q       float64
	attack  float64
	decay   float64
	release float64
	gain    float64
	drive   float64
	detune  float64 // drone detune as a frequency ratio offset
}

var padPresets = []synthPreset{
	{name: "haze", wave: WaveSaw, filter: FilterLowpass, cutoff: 700, sweep: 450, q: 1.1,
		attack: 2.2, decay: 3.5, release: 2.0, gain: 0.16, detune: 0.004},
	{name: "glass", wave: WaveTriangle, filter: FilterLowpass, cutoff: 1400, sweep: 700, q: 0.9,
		attack: 1.6, decay: 2.8, release: 1.6, gain: 0.19, detune: 0.002},
	{name: "cathedral", wave: WaveSquare, filter: FilterLowpass, cutoff: 500, sweep: 260, q: 1.6,
		attack: 3.0, decay: 4.0, release: 2.4, gain: 0.12, drive: 0.4, detune: 0.005},
}

var texturePresets = []synthPreset{
	{name: "rain", wave: WaveNoise, filter: FilterBandpass, cutoff: 2600, sweep: 1600, q: 1.8,
		attack: 0.02, decay: 0.24, release: 0.1, gain: 0.07},
	{name: "gravel", wave: WaveNoise, filter: FilterBandpass, cutoff: 900, sweep: 500, q: 2.6,
		attack: 0.01, decay: 0.12, release: 0.06, gain: 0.09, drive: 0.8},
	{name: "air", wave: WaveNoise, filter: FilterHighpass, cutoff: 5200, sweep: 2400, q: 0.8,
		attack: 0.05, decay: 0.5, release: 0.2, gain: 0.045},
}

// Arp presets. The character draw may also land on no preset at all, in
// which case the layer stays silent for the whole track.
var arpPresets = []synthPreset{
	{name: "droplet", wave: WaveSine, filter: FilterLowpass, cutoff: 2400, sweep: 1200, q: 0.7,
		attack: 0.002, decay: 0.28, release: 0.12, gain: 0.13},
	{name: "pluck", wave: WaveTriangle, filter: FilterLowpass, cutoff: 1800, sweep: 900, q: 1.2,
		attack: 0.004, decay: 0.2, release: 0.1, gain: 0.15},
	{name: "bell", wave: WaveSquare, filter: FilterBandpass, cutoff: 3100, sweep: 1300, q: 3.0,
		attack: 0.001, decay: 0.4, release: 0.2, gain: 0.09},
}

// drumHit is one percussion voice of a kit.
type drumHit struct {
	wave    Waveform
	freq    float64
	freqEnd float64
	sweep   float64
	attack  float64
	decay   float64
	gain    float64
	filter  FilterType
	cutoff  float64
	q       float64
	drive   float64
}

type drumKit struct {
	name  string
	kick  drumHit
	snare drumHit
	hat   drumHit
}

var kits = []drumKit{
	{
		name:  "felt",
		kick:  drumHit{wave: WaveSine, freq: 120, freqEnd: 42, sweep: 0.09, attack: 0.002, decay: 0.26, gain: 0.55},
		snare: drumHit{wave: WaveNoise, attack: 0.001, decay: 0.16, gain: 0.22, filter: FilterBandpass, cutoff: 1900, q: 1.4},
		hat:   drumHit{wave: WaveNoise, attack: 0.001, decay: 0.05, gain: 0.09, filter: FilterHighpass, cutoff: 7600, q: 0.8},
	},
	{
		name:  "tape",
		kick:  drumHit{wave: WaveSine, freq: 95, freqEnd: 36, sweep: 0.12, attack: 0.004, decay: 0.34, gain: 0.5, drive: 0.9},
		snare: drumHit{wave: WaveNoise, attack: 0.002, decay: 0.22, gain: 0.18, filter: FilterBandpass, cutoff: 1300, q: 1.1, drive: 0.5},
		hat:   drumHit{wave: WaveNoise, attack: 0.001, decay: 0.08, gain: 0.06, filter: FilterHighpass, cutoff: 6200, q: 0.7},
	},
	{
		name:  "wire",
		kick:  drumHit{wave: WaveTriangle, freq: 140, freqEnd: 48, sweep: 0.06, attack: 0.001, decay: 0.2, gain: 0.5},
		snare: drumHit{wave: WaveNoise, attack: 0.001, decay: 0.1, gain: 0.26, filter: FilterBandpass, cutoff: 2600, q: 2.2},
		hat:   drumHit{wave: WaveNoise, attack: 0.0005, decay: 0.035, gain: 0.11, filter: FilterHighpass, cutoff: 9000, q: 1.0},
	},
}

// Rhythm pattern seeds, indexed by tick mod 16. Regeneration starts from
// one of these and flips a few steps.
var kickSeeds = [][16]bool{
	{true, false, false, false, false, false, false, false, true, false, false, false, false, false, true, false},
	{true, false, false, false, false, false, true, false, false, false, true, false, false, false, false, false},
	{true, false, false, true, false, false, false, false, true, false, false, false, false, false, false, false},
}

var snareSeeds = [][16]bool{
	{false, false, false, false, true, false, false, false, false, false, false, false, true, false, false, false},
	{false, false, false, false, true, false, false, false, false, false, false, false, true, false, false, true},
}

var hatSeeds = [][16]bool{
	{false, false, true, false, false, false, true, false, false, false, true, false, false, false, true, false},
	{false, true, false, true, false, true, false, true, false, true, false, true, false, true, false, true},
	{false, false, true, false, false, true, true, false, false, false, true, false, false, true, false, false},
}

// Sparse trigger steps for pad swells and texture grains, mod 32.
var swellSteps = [][]int{
	{0, 12, 20},
	{0, 10, 16, 26},
	{4, 18},
}

var grainSteps = [][]int{
	{0, 3, 7, 11, 18, 22, 27},
	{1, 6, 9, 14, 17, 25, 30},
	{0, 5, 13, 21, 29},
}
