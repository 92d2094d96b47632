package repo

import (
	"io/fs"
	"math"
	"reflect"
)

// The platform stat structs differ in field names and widths, so the
// ctime and inode are pulled out by reflection instead of per-OS files.

func sysStruct(info fs.FileInfo) (reflect.Value, bool) {
	sys := info.Sys()
	if sys == nil {
		return reflect.Value{}, false
	}
	v := reflect.ValueOf(sys)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	return v, v.Kind() == reflect.Struct
}

func deviceAndInode(info fs.FileInfo) (uint64, uint64, bool) {
	v, ok := sysStruct(info)
	if !ok {
		return 0, 0, false
	}
	dev, okDev := uintField(v, "Dev")
	ino, okIno := uintField(v, "Ino")
	return dev, ino, okDev && okIno
}

func changeTimeNano(info fs.FileInfo) (int64, bool) {
	v, ok := sysStruct(info)
	if !ok {
		return 0, false
	}
	for _, name := range []string{"Ctim", "Ctimespec"} {
		ts := v.FieldByName(name)
		if !ts.IsValid() || ts.Kind() != reflect.Struct {
			continue
		}
		sec, okSec := intField(ts, "Sec", "Tv_sec")
		nsec, okNsec := intField(ts, "Nsec", "Tv_nsec")
		if okSec && okNsec {
			return sec*1_000_000_000 + nsec, true
		}
	}
	sec, okSec := intField(v, "Ctime")
	nsec, okNsec := intField(v, "CtimeNsec", "Ctimensec")
	if okSec && okNsec {
		return sec*1_000_000_000 + nsec, true
	}
	return 0, false
}

func uintField(v reflect.Value, names ...string) (uint64, bool) {
	for _, name := range names {
		f := v.FieldByName(name)
		switch {
		case !f.IsValid():
			continue
		case f.CanUint():
			return f.Uint(), true
		case f.CanInt() && f.Int() >= 0:
			return uint64(f.Int()), true
		}
	}
	return 0, false
}

func intField(v reflect.Value, names ...string) (int64, bool) {
	for _, name := range names {
		f := v.FieldByName(name)
		switch {
		case !f.IsValid():
			continue
		case f.CanInt():
			return f.Int(), true
		case f.CanUint() && f.Uint() <= math.MaxInt64:
			return int64(f.Uint()), true
		}
	}
	return 0, false
}
