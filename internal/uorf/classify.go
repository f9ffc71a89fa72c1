package uorf

// classTable is indexed by [overlaps CDS][in frame with CDS].
var classTable = [2][2]OverlapClass{
	{NonOverlapping, NonOverlapping},
	{OverlappingOutOfFrame, OverlappingInFrame},
}

// Classify returns the overlap class of the interval [start, end) relative
// to a main CDS at [cdsStart, cdsEnd). It is a pure function of the
// coordinates; the unterminated flag is orthogonal and not considered here.
func Classify(start, end, cdsStart, cdsEnd int) OverlapClass {
	overlaps := end > cdsStart && start < cdsEnd
	inFrame := start%3 == cdsStart%3
	return classTable[btoi(overlaps)][btoi(inFrame)]
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}
