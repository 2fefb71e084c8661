package report

import (
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var (
	ErrFetch             = errors.New("unable to fetch report")
	ErrMalformedReport   = errors.New("malformed report")
	ErrNoData            = errors.New("no data")
	ErrUnknownResult     = errors.New("unknown test result")
	ErrTestCountMismatch = errors.New("test count mismatch across servers")
	ErrTestOrderMismatch = errors.New("test order mismatch across servers")
)

// Validate checks the document shape before anything is rendered.
// Servers disagreeing on the count or the order of the test names per object
// type is an error when strict is set, and a warning otherwise.
func (rd *ReportDocument) Validate(strict bool) error {
	if rd == nil || len(rd.Servers) == 0 {
		return ErrNoData
	}
	for _, s := range rd.Servers {
		if err := validateResults(s); err != nil {
			return err
		}
	}

	ref := rd.Servers[0]
	for _, s := range rd.Servers[1:] {
		for _, ot := range ObjectTypes {
			err := compareTests(ref, s, ot)
			if err == nil {
				continue
			}
			if strict {
				return err
			}
			log.Warn(err)
		}
	}
	return nil
}

// compareTests checks that two servers ran the same tests of an object type
// in the same order. Object ids are server specific and not compared.
func compareTests(ref, s *ServerReport, ot ObjectType) error {
	want, got := ref.CountTests(ot), s.CountTests(ot)
	if want != got {
		return fmt.Errorf("%w: %s has %d %s tests, %s has %d",
			ErrTestCountMismatch, ref.ServerName, want, ot, s.ServerName, got)
	}
	wantNames, gotNames := ref.TestNames(ot), s.TestNames(ot)
	for i := range wantNames {
		if wantNames[i] != gotNames[i] {
			return fmt.Errorf("%w: %s test #%d is %q on %s and %q on %s",
				ErrTestOrderMismatch, ot, i+1, wantNames[i], ref.ServerName, gotNames[i], s.ServerName)
		}
	}
	return nil
}

func validateResults(s *ServerReport) error {
	for _, ot := range ObjectTypes {
		results := s.Results(ot)
		for _, id := range results.IDs() {
			for _, tr := range results.Tests(id) {
				if tr == nil {
					return fmt.Errorf("%w: %s %s %q has an empty test entry", ErrMalformedReport, s.ServerName, ot.Singular(), id)
				}
				if !tr.Result.Valid() {
					return fmt.Errorf("%w: %s test %q has result %d", ErrUnknownResult, s.ServerName, tr.Name, tr.Result)
				}
				for _, ec := range tr.Edges {
					if !ec.Result.Valid() {
						return fmt.Errorf("%w: %s test %q edge case %q has result %d",
							ErrUnknownResult, s.ServerName, tr.Name, ec.API, ec.Result)
					}
				}
			}
		}
	}
	return nil
}
