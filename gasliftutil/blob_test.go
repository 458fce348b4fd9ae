/*
Copyright © 2019 the GasLift authors.
This file is part of GasLift.

GasLift is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

GasLift is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with GasLift.  If not, see <http://www.gnu.org/licenses/>.
*/

package gasliftutil

import (
	"context"
	"io/ioutil"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.Out = ioutil.Discard
	return l
}

func TestIsBlob(t *testing.T) {
	for path, want := range map[string]bool{
		"s3://bucket/out.xlsx":   true,
		"file://bucket/out.xlsx": true,
		"out.xlsx":               false,
		"/tmp/s3://x":            false,
	} {
		if IsBlob(path) != want {
			t.Errorf("IsBlob(%q) != %v", path, want)
		}
	}
}

func TestUploader(t *testing.T) {
	const bucket = "tmp_bucket"
	if err := os.Mkdir(bucket, os.ModePerm); err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(bucket)

	u := uploader{log: quietLogger()}
	if p := u.maybeUpload("local.txt"); p != "local.txt" {
		t.Errorf("local path changed to %q", p)
	}
	local := u.maybeUpload("file://" + bucket + "/out.txt")
	if local == "" || IsBlob(local) {
		t.Fatalf("blob path was not redirected: %q", local)
	}
	if err := ioutil.WriteFile(local, []byte("gaslift"), 0644); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := u.upload(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(u.dir); !os.IsNotExist(err) {
		t.Error("temporary directory was not removed")
	}

	b, err := OpenBucket(ctx, "file://"+bucket)
	if err != nil {
		t.Fatal(err)
	}
	r, err := b.NewReader(ctx, "out.txt")
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	data, err := ioutil.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "gaslift" {
		t.Errorf("uploaded %q (it should be %q)", data, "gaslift")
	}
}

func TestOpenBucketInvalid(t *testing.T) {
	if _, err := OpenBucket(context.Background(), "ftp://bucket"); err == nil {
		t.Error("an unknown provider should be an error")
	}
}
