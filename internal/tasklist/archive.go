package tasklist

import "github.com/charmbracelet/log"

// Archive appends the completed tasks to the file at donePath and removes
// them from l, blanking them in place when preserve is set. It returns the
// tasks taken out of l.
//
// done.txt is written before the caller saves l. A completed line that is
// already in done.txt is not appended again, so retrying after a failed
// save does not duplicate it. l is left untouched if the append fails.
func (l *List) Archive(donePath string, preserve bool) (*List, error) {
	done := l.Completed()
	if done.Len() == 0 {
		return done, nil
	}

	existing, err := ReadFile(donePath)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]int)
	for _, t := range existing.tasks {
		seen[t.String()]++
	}
	pending := done.derive()
	for _, t := range done.tasks {
		if seen[t.String()] > 0 {
			seen[t.String()]--
			continue
		}
		pending.tasks = append(pending.tasks, t)
	}
	if skipped := done.Len() - pending.Len(); skipped > 0 {
		log.Debug("skipping tasks already archived", "path", donePath, "tasks", skipped)
	}

	if err := AppendFile(donePath, pending); err != nil {
		return nil, err
	}
	archived := l.RemoveCompleted(preserve)
	log.Debug("archived tasks", "path", donePath, "tasks", archived.Len())
	return archived, nil
}
