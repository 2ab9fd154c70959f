// SPDX-License-Identifier: EPL-2.0

package mp3

import "errors"

// ErrNotMp3File indicates the stream has no decodable MPEG audio frame
var ErrNotMp3File = errors.New("not an MP3 file")
