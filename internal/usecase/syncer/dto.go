package syncer

// Summary reports the outcome of one sync pass. Failed records never abort
// the pass; their errors are collected here instead.
type Summary struct {
	Synced  int      `json:"synced"`
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

func (s *Summary) addError(err string) {
	s.Failed++
	s.Errors = append(s.Errors, err)
}

func (s *Summary) addUpsert(created bool) {
	s.Synced++
	if created {
		s.Created++
	} else {
		s.Updated++
	}
}
