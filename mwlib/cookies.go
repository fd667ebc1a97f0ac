package mwlib

import (
	"bufio"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// ReadCookies loads session cookies saved by WriteCookies. A missing file
// is not an error; it just means there is no saved session.
func ReadCookies(cookieFile string) ([]*http.Cookie, error) {
	file, err := os.Open(cookieFile)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "opening cookie file")
	}
	defer file.Close()
	reader := bufio.NewReader(file)
	cookies := []*http.Cookie{}
	for {
		line, err := reader.ReadString('\n')
		if err == io.EOF && line == "" {
			return cookies, nil
		}
		if err != nil && err != io.EOF {
			return nil, errors.Wrap(err, "reading cookie file")
		}
		line = strings.TrimSuffix(line, "\n")
		name, value, found := strings.Cut(line, " ")
		if !found {
			return nil, errors.Errorf("malformed line in cookie file %s", cookieFile)
		}
		cookies = append(cookies, &http.Cookie{Name: name, Value: value})
	}
}

// WriteCookies saves cookies one per line as "name value".
func WriteCookies(cookies []*http.Cookie, cookieFile string) error {
	tmpFile := cookieFile + ".tmp"
	writer, err := os.OpenFile(tmpFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return errors.Wrap(err, "creating cookie file")
	}
	buffered := bufio.NewWriter(writer)
	for i := range cookies {
		buffered.WriteString(cookies[i].Name)
		buffered.WriteString(" ")
		buffered.WriteString(cookies[i].Value)
		buffered.WriteString("\n")
	}
	if err := buffered.Flush(); err != nil {
		writer.Close()
		return errors.Wrap(err, "writing cookie file")
	}
	if err := writer.Close(); err != nil {
		return errors.Wrap(err, "closing cookie file")
	}
	return errors.Wrap(os.Rename(tmpFile, cookieFile), "replacing cookie file")
}
