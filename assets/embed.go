package assets

import (
	"bufio"
	"embed"
	"strings"
)

//go:embed adjectives.txt animals.txt
var FS embed.FS

func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

func AdjectivesList() ([]string, error) {
	return readLines("adjectives.txt")
}

func AnimalsList() ([]string, error) {
	return readLines("animals.txt")
}
