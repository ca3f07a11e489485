// Command dcmtext converts DICOM text values between their encoded form
// and UTF-8: decode and encode element values for a given Specific
// Character Set, validate character set attribute values, guess the code
// page of undeclared legacy files and list the registered terms.
package main

import (
	"fmt"
	"io/ioutil"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/pkg/errors"
	"github.com/softlandia/cpd"
	"golang.org/x/sync/errgroup"

	dicom "github.com/StingX84/dicomlib-playground"
)

var cli struct {
	Charset          string `short:"c" default:"ISO_IR 6" help:"Specific Character Set value, multi-valued with backslashes."`
	VR               string `default:"LO" help:"Value representation of the converted values (drives delimiter handling)."`
	Strict           bool   `help:"Fail on malformed escapes and invalid code units instead of replacing them."`
	AllowNonstandard bool   `default:"true" negatable:"" help:"Accept non-standard character sets."`
	Modern           bool   `default:"true" negatable:"" help:"Use the modern Greek and Hebrew code page variants."`

	Decode  decodeCmd  `cmd:"" help:"Decode encoded values to UTF-8."`
	Encode  encodeCmd  `cmd:"" help:"Encode UTF-8 text to the character set."`
	Inspect inspectCmd `cmd:"" help:"Validate a character set value and print the resulting plan."`
	Detect  detectCmd  `cmd:"" help:"Guess the code page of input files."`
	Terms   termsCmd   `cmd:"" help:"List the registered character set terms."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("dcmtext"),
		kong.Description("DICOM Specific Character Set toolbox."))
	if err := ctx.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "dcmtext:", err)
		os.Exit(1)
	}
}

func config() dicom.Config {
	cfg := dicom.DefaultConfig()
	cfg.AllowNonStandard = cli.AllowNonstandard
	cfg.StrictEscapes = cli.Strict
	cfg.UseModernCodePages = cli.Modern
	return cfg
}

// codec builds the converter for the --charset flag, reporting
// diagnostics on stderr.
func codec() (*dicom.Codec, error) {
	cfg := config()
	plan, diags := dicom.ParseSpecificCharacterSet(cli.Charset, cfg)
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d)
	}
	if plan == nil && cli.Charset != "" {
		return nil, errors.Errorf("character set %q rejected", cli.Charset)
	}
	return dicom.NewCodec(plan, cfg), nil
}

func valueContext() dicom.Context {
	return dicom.ContextForVR(dicom.ParseVR(strings.ToUpper(cli.VR)))
}

// chomp drops one trailing line break so that line-oriented files keep
// their content byte-exact.
func chomp(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == '\n' {
		b = b[:n-1]
		if n := len(b); n > 0 && b[n-1] == '\r' {
			b = b[:n-1]
		}
	}
	return b
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return ioutil.ReadAll(os.Stdin)
	}
	return ioutil.ReadFile(path)
}

type decodeCmd struct {
	Files []string `arg:"" optional:"" help:"Input files, one element value each; stdin when absent."`
}

func (cmd *decodeCmd) Run() error {
	c, err := codec()
	if err != nil {
		return err
	}
	ctx := valueContext()
	files := cmd.Files
	if len(files) == 0 {
		files = []string{"-"}
	}
	out := make([]string, len(files))
	var g errgroup.Group
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			data, err := readInput(path)
			if err != nil {
				return errors.Wrap(err, path)
			}
			s, err := c.Decode(chomp(data), ctx)
			if err != nil {
				return errors.Wrap(err, path)
			}
			out[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, s := range out {
		fmt.Println(s)
	}
	return nil
}

type encodeCmd struct {
	Text  string   `short:"t" help:"Literal text to encode instead of reading files."`
	Hex   bool     `help:"Print the encoded bytes as hex instead of raw."`
	Files []string `arg:"" optional:"" help:"UTF-8 input files; stdin when absent."`
}

func (cmd *encodeCmd) Run() error {
	c, err := codec()
	if err != nil {
		return err
	}
	ctx := valueContext()
	var inputs []string
	if cmd.Text != "" {
		inputs = []string{cmd.Text}
	} else {
		files := cmd.Files
		if len(files) == 0 {
			files = []string{"-"}
		}
		for _, path := range files {
			data, err := readInput(path)
			if err != nil {
				return errors.Wrap(err, path)
			}
			inputs = append(inputs, string(chomp(data)))
		}
	}
	for _, s := range inputs {
		b, err := c.Encode(s, ctx)
		if err != nil {
			return err
		}
		if cmd.Hex {
			fmt.Printf("% X\n", b)
			continue
		}
		os.Stdout.Write(b)
		os.Stdout.Write([]byte{'\n'})
	}
	return nil
}

type inspectCmd struct {
	Values []string `arg:"" optional:"" help:"Character set values to validate; --charset when absent."`
}

func (cmd *inspectCmd) Run() error {
	raw := cli.Charset
	if len(cmd.Values) > 0 {
		raw = strings.Join(cmd.Values, `\`)
	}
	cfg := config()
	plan, diags := dicom.ParseSpecificCharacterSet(raw, cfg)
	for _, d := range diags {
		fmt.Println(d)
	}
	if plan == nil {
		return errors.Errorf("character set %q rejected, conversion disabled", raw)
	}
	fmt.Printf("accepted: %s\n", plan)
	for _, t := range plan.Terms() {
		d, _, err := dicom.FindTerm(string(t))
		if err != nil {
			continue
		}
		fmt.Printf("  %-16s %-40s %s\n", d.Term, d.Kind, d.Description)
	}
	return nil
}

type detectCmd struct {
	Files []string `arg:"" optional:"" help:"Files to inspect; stdin when absent."`
}

func (cmd *detectCmd) Run() error {
	files := cmd.Files
	if len(files) == 0 {
		files = []string{"-"}
	}
	out := make([]string, len(files))
	var g errgroup.Group
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			data, err := readInput(path)
			if err != nil {
				return errors.Wrap(err, path)
			}
			id := cpd.CodepageAutoDetect(data)
			line := fmt.Sprintf("%s: %s", path, id)
			// Map the guess onto a registered term when one matches.
			if d, _, err := dicom.FindTerm(id.String()); err == nil {
				line += fmt.Sprintf(" (character set %q)", d.Term)
			}
			out[i] = line
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, line := range out {
		fmt.Println(line)
	}
	return nil
}

type termsCmd struct {
	Aliases bool `help:"Also list the registered aliases of each term."`
}

func (cmd *termsCmd) Run() error {
	for _, d := range dicom.AllTerms() {
		fmt.Printf("%-16s %-40s %s\n", d.Term, d.Kind, d.Description)
		if cmd.Aliases && len(d.Aliases) > 0 {
			fmt.Printf("%-16s aliases: %s\n", "", strings.Join(d.Aliases, ", "))
		}
	}
	return nil
}
