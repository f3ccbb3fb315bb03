package deb822

import "bytes"

var (
	pgpSignedHeader = []byte("-----BEGIN PGP SIGNED MESSAGE-----")
	pgpSigHeader    = []byte("-----BEGIN PGP SIGNATURE-----")
)

// StripSignature returns the signed payload of an OpenPGP clearsigned
// document (an InRelease file). Input that is not clearsigned is returned
// unchanged. The signature is not verified.
func StripSignature(data []byte) []byte {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if !bytes.HasPrefix(trimmed, pgpSignedHeader) {
		return data
	}
	body := trimmed[len(pgpSignedHeader):]
	// armor headers ("Hash: SHA512") end at the first blank line
	sep := bytes.Index(body, []byte("\n\n"))
	if crlf := bytes.Index(body, []byte("\r\n\r\n")); crlf >= 0 && (sep < 0 || crlf < sep) {
		sep = crlf + 2
	}
	if sep < 0 {
		return nil
	}
	body = body[sep+2:]
	if end := bytes.Index(body, pgpSigHeader); end >= 0 {
		body = body[:end]
	}
	return unescapeDashes(body)
}

// unescapeDashes undoes dash-escaping ("- " prefixes) from RFC 4880 §7.1.
func unescapeDashes(body []byte) []byte {
	if !bytes.Contains(body, []byte("- ")) {
		return body
	}
	lines := bytes.Split(body, []byte("\n"))
	for i, l := range lines {
		lines[i] = bytes.TrimPrefix(l, []byte("- "))
	}
	return bytes.Join(lines, []byte("\n"))
}
