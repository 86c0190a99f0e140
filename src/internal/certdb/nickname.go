// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package certdb

import "fmt"

// BaseNickname derives a nickname from the subject: the common name, else
// the first organizational unit, else the first organization, else the
// whole distinguished name.
func BaseNickname(cert *Certificate) string {
	subject := cert.X509.Subject
	switch {
	case subject.CommonName != "":
		return subject.CommonName
	case len(subject.OrganizationalUnit) > 0 && subject.OrganizationalUnit[0] != "":
		return subject.OrganizationalUnit[0]
	case len(subject.Organization) > 0 && subject.Organization[0] != "":
		return subject.Organization[0]
	}
	if dn := subject.String(); dn != "" {
		return dn
	}
	return "Certificate"
}

// MakeNickname returns the first nickname derived from the subject that does
// not collide with a certificate of another subject in s: the base nickname,
// then "base #2", "base #3" and so on. The same inputs always give the same
// nickname.
//
// Parameters:
//   - s: Store checked for collisions
//   - cert: Certificate to name
//
// Returns:
//   - string: Collision-free nickname
//   - error: Error from the store lookup
func MakeNickname(s Store, cert *Certificate) (string, error) {
	base := BaseNickname(cert)
	nickname := base

	for n := 2; ; n++ {
		conflict, err := s.NicknameConflict(nickname, cert.RawSubject())
		if err != nil {
			return "", err
		}
		if !conflict {
			return nickname, nil
		}
		nickname = fmt.Sprintf("%s #%d", base, n)
	}
}
