package host

import "context"

// fakeRunner satisfies Runner with canned output, standing in for the
// host's pm2 and helper commands.
type fakeRunner struct {
	stdout   []byte
	combined []byte
	err      error

	lastName string
	lastArgs []string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.lastName = name
	f.lastArgs = args
	if f.err != nil {
		return nil, f.err
	}
	return f.stdout, nil
}

func (f *fakeRunner) RunCombined(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.lastName = name
	f.lastArgs = args
	if f.err != nil {
		return nil, f.err
	}
	return f.combined, nil
}
