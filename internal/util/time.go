package util

import "time"

var kstLocation *time.Location

func init() {
	var err error
	kstLocation, err = time.LoadLocation("Asia/Seoul")
	if err != nil {
		kstLocation = time.FixedZone("KST", 9*60*60)
	}
}

// NowKST is the default record clock. The site is Korean, so record
// timestamps carry KST.
func NowKST() time.Time {
	return time.Now().In(kstLocation)
}

func ToKST(t time.Time) time.Time {
	return t.In(kstLocation)
}
