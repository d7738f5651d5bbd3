package config

import (
	"fmt"
	"os"

	"github.com/ghodss/yaml"
	"github.com/spf13/afero"

	"github.com/sidkik/emoji-mirror/pkg/errors"
)

// invalidConfigTemplate is shown when the YAML can't be decoded. The decoder
// only gives us a message, so it's passed on as is.
const invalidConfigTemplate = "The config file %q is invalid.\n" +
	"Check that every field is spelled correctly and has the right type.\n\n" +
	"Decoder error:\n" +
	"%s"

type incompatibleVersionError struct {
	path, exp, actual string
}

func (err incompatibleVersionError) Error() string {
	return err.FriendlyMessage()
}

func (err incompatibleVersionError) FriendlyMessage() string {
	return fmt.Sprintf("The config file %q has version %q, but this build "+
		"of emoji-mirror only reads version %q.", err.path, err.actual, err.exp)
}

// versionHeader is decoded leniently before the rest of the file, so that a
// file written for another version reports the version mismatch instead of
// whichever of its fields we don't know about.
type versionHeader struct {
	Version string `json:"version"`
}

// readConfigFile decodes the YAML file at path into out, which should
// already hold the defaults. Files without a version are treated as
// InitialConfigVersion.
func readConfigFile(path string, out interface{}, expVersion string) error {
	contents, err := afero.ReadFile(fs, path)
	switch {
	case os.IsNotExist(err):
		return errors.FileNotFound{Path: path}
	case err != nil:
		return errors.WithContext(err, "read file")
	}

	var header versionHeader
	if err := yaml.Unmarshal(contents, &header); err != nil {
		return errors.NewFriendlyError(invalidConfigTemplate, path, err)
	}
	if header.Version == "" {
		header.Version = InitialConfigVersion
	}
	if header.Version != expVersion {
		return incompatibleVersionError{path: path, exp: expVersion, actual: header.Version}
	}

	if err := yaml.UnmarshalStrict(contents, out, yaml.DisallowUnknownFields); err != nil {
		return errors.NewFriendlyError(invalidConfigTemplate, path, err)
	}
	return nil
}
