package diffstat

// LookaheadWindow is how far ahead a mismatch probes for a resync point.
const LookaheadWindow = 3

// CountLineChanges estimates added and deleted lines between two versions.
// It walks both sides once; on a mismatch it looks up to LookaheadWindow lines
// ahead, trying a deletion of k lines before an insertion of k lines for each k,
// and falls back to a one-line substitution. This is not an optimal diff.
func CountLineChanges(oldLines, newLines []string) (added, deleted uint32) {
	oi, ni := 0, 0
	for oi < len(oldLines) || ni < len(newLines) {
		if oi >= len(oldLines) {
			added += uint32(len(newLines) - ni)
			break
		}
		if ni >= len(newLines) {
			deleted += uint32(len(oldLines) - oi)
			break
		}
		if oldLines[oi] == newLines[ni] {
			oi++
			ni++
			continue
		}

		matched := false
		for k := 1; k <= LookaheadWindow; k++ {
			if oi+k < len(oldLines) && oldLines[oi+k] == newLines[ni] {
				deleted += uint32(k)
				oi += k
				matched = true
				break
			}
			if ni+k < len(newLines) && newLines[ni+k] == oldLines[oi] {
				added += uint32(k)
				ni += k
				matched = true
				break
			}
		}
		if !matched {
			added++
			deleted++
			oi++
			ni++
		}
	}
	return added, deleted
}
