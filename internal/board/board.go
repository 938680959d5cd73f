// Package board holds the UART0 clock profiles of the boards the driver runs
// on. The host tools use them to pick a line rate and to cross-check the
// divisor compiled into the firmware.
package board

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"github.com/jangala-dev/tinygo-s3cuart/s3cuart"
)

//go:embed boards.yaml
var rawProfiles []byte

var profiles Profiles

var ErrProfileNotFound = errors.New("board profile not found")

type Profiles []Profile

type Profile struct {
	Name    string   `yaml:"name"`
	SoC     string   `yaml:"soc"`
	PCLK    uint32   `yaml:"pclk"`
	Baud    uint32   `yaml:"baud"`
	Divisor uint32   `yaml:"divisor"`
	Tags    []string `yaml:"tags"`
}

func init() {
	var err error
	if profiles, err = Parse(rawProfiles); err != nil {
		panic(err)
	}
}

// Parse decodes and checks a profile list.
func Parse(data []byte) (Profiles, error) {
	var ps Profiles
	if err := yaml.Unmarshal(data, &ps); err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	for _, p := range ps {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("board %q: duplicate profile", p.Name)
		}
		seen[p.Name] = true
	}
	return ps, nil
}

// All returns the embedded profiles.
func All() Profiles {
	return profiles
}

// Default is the profile the firmware constants are built for.
func Default() Profile {
	p, err := profiles.FindByTag("default")
	if err != nil {
		panic(err)
	}
	return p
}

func (ps Profiles) Find(name string) (Profile, error) {
	i := slices.IndexFunc(ps, func(p Profile) bool { return p.Name == strings.ToLower(name) })
	if i < 0 {
		return Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return ps[i], nil
}

func (ps Profiles) FindByTag(tag string) (Profile, error) {
	for _, p := range ps {
		if slices.Contains(p.Tags, tag) {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w: tag %s", ErrProfileNotFound, tag)
}

// Names returns the profile names in sorted order.
func (ps Profiles) Names() []string {
	byName := make(map[string]Profile, len(ps))
	for _, p := range ps {
		byName[p.Name] = p
	}
	names := maps.Keys(byName)
	slices.Sort(names)
	return names
}

// Validate checks that the baud rate is reachable from the clock and that the
// divisor fits UBRDIV0 and is the one the datasheet formula gives.
func (p Profile) Validate() error {
	if p.Name == "" {
		return errors.New("board profile without a name")
	}
	if p.PCLK == 0 || p.Baud == 0 {
		return fmt.Errorf("board %q: pclk and baud must be set", p.Name)
	}
	if p.Baud > p.PCLK/16 {
		return fmt.Errorf("board %q: baud %d above pclk/16", p.Name, p.Baud)
	}
	if p.Divisor > s3cuart.MaxDivisor {
		return fmt.Errorf("board %q: divisor %d does not fit UBRDIV0", p.Name, p.Divisor)
	}
	if want := s3cuart.Divisor(p.PCLK, p.Baud); p.Divisor != want {
		return fmt.Errorf("board %q: divisor %d, formula gives %d", p.Name, p.Divisor, want)
	}
	return nil
}

// ActualBaud is the line rate the divisor really produces.
func (p Profile) ActualBaud() uint32 {
	return s3cuart.BaudRate(p.PCLK, p.Divisor)
}

// BaudError is the relative error of ActualBaud against Baud, in percent.
func (p Profile) BaudError() float64 {
	return (float64(p.ActualBaud()) - float64(p.Baud)) * 100 / float64(p.Baud)
}
