package store

import (
	"fmt"
	"strconv"
)

// Key layout. Every table row lives under a generation prefix so a rebuild
// can write the next snapshot in full before the meta key flips readers over:
//
//	!current               -> active generation number
//	!meta/<gen>            -> run metadata (run id)
//	g/<gen>/c/<code>       -> encoded concept row
//	g/<gen>/e/<child>/<parent> -> (empty) edge row
//	g/<gen>/s/<code>/<n>   -> synonym string, n preserves order
var keyCurrent = []byte("!current")

func keyMeta(gen uint64) []byte {
	return []byte(fmt.Sprintf("!meta/%d", gen))
}

func genPrefix(gen uint64) []byte {
	return []byte("g/" + strconv.FormatUint(gen, 10) + "/")
}

func keyConcept(gen uint64, code string) []byte {
	return append(genPrefix(gen), []byte("c/"+code)...)
}

func conceptPrefix(gen uint64) []byte {
	return append(genPrefix(gen), []byte("c/")...)
}

func keyEdge(gen uint64, child, parent string) []byte {
	return append(genPrefix(gen), []byte("e/"+child+"/"+parent)...)
}

func edgePrefix(gen uint64) []byte {
	return append(genPrefix(gen), []byte("e/")...)
}

func keySynonym(gen uint64, code string, n int) []byte {
	return append(genPrefix(gen), []byte(fmt.Sprintf("s/%s/%06d", code, n))...)
}

func synonymPrefix(gen uint64) []byte {
	return append(genPrefix(gen), []byte("s/")...)
}
