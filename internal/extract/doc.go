// Package extract reads the pipeline inputs: raw sales rows from a CSV or
// XLSX file and customer records from a JSON array.
//
// Each source is parsed atomically. The first malformed row or record fails
// the whole file, and the Extract* methods turn that failure into a logged
// error plus an empty result, which the pipeline reads as "stop here".
// The Read* methods return the error instead.
//
// Large sales files can be consumed in batches:
//
//	for chunk, err := range extractor.Chunks(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    handle(chunk)
//	}
package extract
